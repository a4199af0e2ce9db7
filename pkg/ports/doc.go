/*
Package ports defines the driven ports (interfaces) for the Abacus engine.

These interfaces decouple session hosting from external implementations, allowing
the HTTP and MCP servers to keep calculator sessions in process memory or share
them between replicas through Redis.

# Key Interfaces

  - StateStore: Responsible for keeping and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
