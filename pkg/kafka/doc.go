// Package kafka wraps github.com/IBM/sarama for publishing fake user records.
//
// Sends are fire-and-forget: Producer.Send returns once the message is handed
// to the async producer. Delivery results are drained in the background and
// only logged and counted; callers never observe them.
//
// Message format:
//   - Key: none (the client picks the partition)
//   - Value: encoded user (Avro binary by default)
//   - Headers: content-type of the value
package kafka
