/*
Package observability turns calculator lifecycle hooks into Prometheus metrics
and structured log lines.

Hooks from several sources are merged with CombineHooks so that an Engine can
feed metrics, audit logging and custom callbacks at the same time.
*/
package observability
