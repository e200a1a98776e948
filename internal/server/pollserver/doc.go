// Package pollserver is a single-threaded TCP server driven by poll(2).
//
// The server owns one non-blocking loopback listener and a fixed number of
// client slots. Run blocks in poll over the listener, every occupied slot,
// and an internal wake pipe:
//
//   - listener readable: accept every pending connection into the first free
//     slot; when no slot is free the connection is accepted and closed at once
//   - client readable: one read of up to BufferSize bytes is one request, and
//     the handler runs synchronously before the next poll; a read of zero
//     bytes or an error frees the slot
//   - wake pipe readable: Stop was called and Run returns
//
// There is no framing beyond a single read, and replies are written with a
// single write. Because the handler always runs on the Run goroutine, state
// it touches needs no locking.
package pollserver
