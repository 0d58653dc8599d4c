package models

// AppointmentDelivered is the status report filing sets on an appointment.
// Bookings never carry a status of their own.
const AppointmentDelivered = "delivered"

// AppointmentFilter selects appointments. Search, when set, replaces the exact
// email match with a case-insensitive substring match.
type AppointmentFilter struct {
	Email  string
	Search string
}
