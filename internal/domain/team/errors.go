package team

import "errors"

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrTeamNameExists = errors.New("team name already exists")
	ErrInvalidManager = errors.New("team manager must be an active manager or admin of the company")
	ErrNotTeamMember  = errors.New("user is not a member of this team")
	ErrForbiddenTeam  = errors.New("you do not manage this team")
	ErrForbiddenUser  = errors.New("you cannot access this user's data")
)
