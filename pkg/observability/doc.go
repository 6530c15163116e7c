/*
Package observability turns wizard lifecycle hooks into logs and Prometheus metrics.

Both helpers return a domain.LifecycleHooks value; combine them with LifecycleHooks.Merge
and pass the result to formwizard.WithLifecycleHooks.
*/
package observability
