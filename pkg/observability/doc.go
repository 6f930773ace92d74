/*
Package observability exposes translation metrics to Prometheus.

Metrics is fed by the translator after every run and by the construction
observer while the alternating automaton is built. Register it on a
dedicated registry in tests and on prometheus.DefaultRegisterer in servers.
*/
package observability
