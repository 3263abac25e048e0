package domain

// RSVP statuses that count as active meetup membership. Anything else
// ("left", "removed", a cancelled invite) is denied realtime admission.
var ActiveRSVPStatuses = []string{"going", "maybe", "waitlist"}
