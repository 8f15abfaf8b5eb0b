package domain

import "fmt"

// Message is an inbound chat text. It lives only while it is being delivered.
type Message struct {
	From ConnID
	Text string
}

// Echo is what the sender gets back.
func (m Message) Echo() string {
	return fmt.Sprintf("You said: %s (Your ID: %s)", m.Text, m.From)
}

// Relayed is what every other connection gets.
func (m Message) Relayed() string {
	return fmt.Sprintf("%s says: %s", m.From, m.Text)
}

// DepartureNotice announces that id has left.
func DepartureNotice(id ConnID) string {
	return fmt.Sprintf("%s connection dropped", id)
}
