/*
Package domain contains the core entities of the frame graph.

It is kept free of I/O and third-party dependencies. Frames are plain string
identifiers; the only stateful entity is the Edge, a rigid transform from a parent
frame to a child frame tagged with a lifetime Classification.

# Key Entities

  - Edge: a stored parent->child transform with its bookkeeping timestamps.
  - EdgeUpdate: an ingestion request, validated before it becomes an Edge.
  - View: the merged durable+expiring edge set queries run against.
  - TreeNode: a presentation-only hierarchy annotated with validity.
*/
package domain
