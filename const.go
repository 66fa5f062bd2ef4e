package match

// EngineVersion identifies the build of the matching core. The CLI
// `stats` command does not print it.
const EngineVersion = "v1.0.0"

// DefaultSubmissionQueueCapacity is the ring buffer size used when the
// caller doesn't specify one. Must be a power of two.
const DefaultSubmissionQueueCapacity = 1 << 16

// DefaultPoolCapacity is the number of Order records preallocated by a
// fresh OrderPool.
const DefaultPoolCapacity = 1024
