package domain

import "time"

// Endpoint is a URL+method that has been sent at least once.
// Responses are ordered newest first.
type Endpoint struct {
	ID        int64
	URL       string
	Method    Method
	Responses []Response
}

// Response is one received reply together with the request snapshot that produced it
type Response struct {
	ID         int64
	EndpointID int64
	Request    Request
	Text       string
	Code       int
	ReceivedAt time.Time
}

// ResponseByID returns the index of the response with the given id, or -1
func (e Endpoint) ResponseByID(id int64) int {
	for i, r := range e.Responses {
		if r.ID == id {
			return i
		}
	}
	return -1
}
