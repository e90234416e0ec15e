/*
Package ports defines the driven ports (interfaces) of the frame graph.

These interfaces decouple the core store and resolver from the transports that
deliver edges and from the sources of time, so feeds can be swapped (Redis,
rosbridge, fixture files, HTTP) and tests can run on a manual clock.

# Key Interfaces

  - EdgeSink: accepts edge updates (implemented by the store and the facade).
  - FeedTarget: an EdgeSink that also follows the transport's connection state.
  - Feed: a transport that pushes edges into a FeedTarget until its context ends.
  - Clock: wall-clock time and one-shot timers.
*/
package ports
