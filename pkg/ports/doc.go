/*
Package ports defines the driven ports (interfaces) for the crosswalk engine.

These interfaces decouple the core logic from external collaborators,
allowing the engine to work with different definition stores and tabular
data sources.

# Key Interfaces

  - DefinitionStore: persists frozen Schema, Crosswalk, and Transform documents.
  - DataSource: yields an in-memory table, its column names, and a content checksum from tabular bytes.
*/
package ports
