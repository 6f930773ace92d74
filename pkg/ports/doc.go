/*
Package ports defines the driven ports (interfaces) of the translator.

These interfaces decouple the translation pipeline from external
implementations, so rendered automata can be kept in process or in a shared
store without touching the core.

# Key Interfaces

  - Cache: stores rendered automata by formula, configuration and format.
  - DistributedLocker: serializes cache misses across replicas.

RunCacheContract and RunLockerContract check that an adapter honors the
interfaces.
*/
package ports
