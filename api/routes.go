package api

const (
	// PingEndpoint is the endpoint for checking the API status.
	PingEndpoint = "/ping"
	// EventsEndpoint is the endpoint for creating a new voting event.
	EventsEndpoint = "/events"
	// EventEndpoint is the endpoint to get, update or delete one event.
	EventURLParam = "eventId"
	EventEndpoint = "/events/{" + EventURLParam + "}"
	// AdminAuthEndpoint validates an admin credential for one event.
	AdminAuthEndpoint = "/events/{" + EventURLParam + "}/admin"
	// InvitationsEndpoint issues invitations and lists invited contacts.
	InvitationsEndpoint = "/events/{" + EventURLParam + "}/invitations"
	// TokenEndpoint validates an invitation token without consuming it.
	TokenURLParam = "token"
	TokenEndpoint = "/tokens/{" + TokenURLParam + "}"
	// MembersEndpoint registers and lists group members.
	MembersEndpoint = "/events/{" + EventURLParam + "}/members"
	// MemberEndpoint removes one group member.
	MemberURLParam = "identity"
	MemberEndpoint = MembersEndpoint + "/{" + MemberURLParam + "}"
	// VotesEndpoint is the endpoint for submitting a vote.
	VotesEndpoint = "/events/{" + EventURLParam + "}/votes"
	// ResultsEndpoint returns the running tallies of one event.
	ResultsEndpoint = "/events/{" + EventURLParam + "}/results"

	// AdminTokenHeader carries the admin capability token on management
	// requests.
	AdminTokenHeader = "X-Admin-Token"
)
