/*
Package ports defines the driven ports (interfaces) for the fangraph engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with any hardware access layer and any config persistence backend.

# Key Interfaces

  - HardwareBridge: enumerates sensors and actuators, reads values, writes modes and duty cycles.
  - ConfigStore: persists named configs (memory, file, redis adapters).
  - SettingsStore: persists application settings.

Contract suites (RunHardwareBridgeContract, RunConfigStoreContract) let any adapter
prove it satisfies the port.
*/
package ports
