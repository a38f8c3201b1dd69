package websocket

// Event types carried on meeting topics and user queues. Payload
// fields are the identifiers and display data of the transition that
// produced the event.
const (
	EventMeetingCreated    = "MEETING_CREATED"
	EventHostJoined        = "HOST_JOINED"
	EventJoinRequest       = "JOIN_REQUEST"
	EventJoinAccepted      = "JOIN_ACCEPTED"
	EventJoinRejected      = "JOIN_REJECTED"
	EventParticipantJoined = "PARTICIPANT_JOINED"
	EventParticipantLeft   = "PARTICIPANT_LEFT"
	EventParticipantKicked = "PARTICIPANT_KICKED"
	EventYouWereKicked     = "YOU_WERE_KICKED"
	EventMeetingEnded      = "MEETING_ENDED"
)

// TopicMeetings is the global channel announcing new meetings.
const TopicMeetings = "meetings"

// Event is a state-change notification. Always contains a "type" key
// with one of the Event* constants.
type Event map[string]any

// MeetingTopic returns the broadcast channel name for a meeting.
func MeetingTopic(code string) string {
	return "meeting/" + code
}

// Notifier is the fan-out contract the services depend on. Delivery is
// best-effort and at-most-once: an event reaches a recipient only if
// they were subscribed at send time and their buffer had room.
type Notifier interface {
	// Broadcast delivers an event to every subscriber of a topic.
	Broadcast(topic string, event Event)

	// Notify delivers an event to a single user's private queue.
	Notify(userEmail string, event Event)
}
