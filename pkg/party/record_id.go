package party

// RecordId identifies one logical record within a (step, channel) pair. It
// is the key under which peers rendezvous; it never resets within a step.
type RecordId uint32

// RecordIdFromInt builds a RecordId from a slice index, the common case
// when iterating over a batch of rows.
func RecordIdFromInt(i int) RecordId { return RecordId(i) }
