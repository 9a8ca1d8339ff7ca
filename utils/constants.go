// File: utils/constants.go
package utils

import "time"

// BookingSessionPrefix is the prefix used for Redis booking-session keys.
const BookingSessionPrefix = "bookingSession:"

// BookingSessionTTL is the time-to-live for an idle booking session.
const BookingSessionTTL = 24 * time.Hour
