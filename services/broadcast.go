package services

// Broadcaster pushes live events to everyone watching a tournament room.
// *brackets.Hub satisfies it; tests pass nil.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}
