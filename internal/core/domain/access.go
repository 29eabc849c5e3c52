package domain

// ViewerState is the per-request authentication state of the caller.
type ViewerState string

const (
	StateUnauthenticated ViewerState = "unauthenticated"
	StateNoProfile       ViewerState = "authenticated-no-profile"
	StateUserMode        ViewerState = "authenticated-user-mode"
	StateAdminMode       ViewerState = "authenticated-admin-mode"
)

// Viewer is the identity resolved for a single request. It is built once
// from the request credential and never shared between requests.
type Viewer struct {
	UserID    string
	SessionID string

	roles      RolePair
	hasProfile bool
}

// Anonymous is the viewer of a request without a usable credential.
func Anonymous() Viewer { return Viewer{} }

// ProfileMissing is a viewer whose session is valid but whose role pair
// could not be loaded.
func ProfileMissing(userID, sessionID string) Viewer {
	return Viewer{UserID: userID, SessionID: sessionID}
}

// Authenticated is a viewer with a loaded role pair.
func Authenticated(userID, sessionID string, roles RolePair) Viewer {
	if roles.IsZero() {
		return ProfileMissing(userID, sessionID)
	}
	return Viewer{UserID: userID, SessionID: sessionID, roles: roles, hasProfile: true}
}

func (v Viewer) IsAuthenticated() bool { return v.UserID != "" }

// Roles returns the role pair and whether a profile was loaded.
func (v Viewer) Roles() (RolePair, bool) { return v.roles, v.hasProfile }

func (v Viewer) State() ViewerState {
	switch {
	case !v.IsAuthenticated():
		return StateUnauthenticated
	case !v.hasProfile:
		return StateNoProfile
	case v.roles.Active() == RoleAdmin:
		return StateAdminMode
	default:
		return StateUserMode
	}
}

// InAdminMode requires both the grant and the active mode.
func (v Viewer) InAdminMode() bool {
	return v.hasProfile && v.roles.Granted() == RoleAdmin && v.roles.Active() == RoleAdmin
}

func (v Viewer) InUserMode() bool {
	return v.hasProfile && v.roles.Active() == RoleUser
}

// Outcome of an access decision.
type Outcome string

const (
	OutcomeAllow    Outcome = "allow"
	OutcomeRedirect Outcome = "redirect"
)

type Decision struct {
	Outcome Outcome
	Target  string
}

func Allow() Decision { return Decision{Outcome: OutcomeAllow} }

func RedirectTo(target string) Decision {
	return Decision{Outcome: OutcomeRedirect, Target: target}
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// Decide combines the route category with the viewer. Anything that cannot
// be proven ends on the less privileged branch.
func Decide(category RouteCategory, v Viewer) Decision {
	switch category {
	case RouteAdminArea:
		if !v.IsAuthenticated() {
			return RedirectTo(PathLogin)
		}
		if !v.InAdminMode() {
			return RedirectTo(PathAccount)
		}
		return Allow()

	case RouteUserArea:
		if !v.IsAuthenticated() {
			return RedirectTo(PathLogin)
		}
		roles, ok := v.Roles()
		if !ok {
			// No active role to route on; sending them to /admin would bounce
			// back here, so they re-authenticate instead.
			return RedirectTo(PathLogin)
		}
		if roles.Active() != RoleUser {
			return RedirectTo(PathAdmin)
		}
		return Allow()

	case RouteAuthArea:
		if !v.IsAuthenticated() {
			return Allow()
		}
		roles, ok := v.Roles()
		if !ok {
			return Allow()
		}
		if roles.Active() == RoleAdmin {
			return RedirectTo(PathAdmin)
		}
		return RedirectTo(PathAccount)

	default:
		return Allow()
	}
}
