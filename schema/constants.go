package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents a relational backend for the match source or the local stores.
	DatabaseBackend string

	// TriState represents a yes/no/any selection.
	TriState string

	// Outcome represents a match result selection in the raw matches view.
	Outcome string

	// Role is the positional role of a character within a match.
	Role string

	// GroupField names a participation attribute that rows can be grouped by.
	GroupField string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default for local stores
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql" // default for the match source
	NoneBackend       DatabaseBackend = "none"
)

// Tri-state selections.
const (
	TriAny TriState = "any"
	TriYes TriState = "yes"
	TriNo  TriState = "no" // default for multiplayer
)

// Outcome selections.
const (
	OutcomeAll  Outcome = "all"
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// Character roles. Position 0 in a match is the main character.
const (
	RoleMain      Role = "main"
	RoleSecondary Role = "secondary"
	RoleAll       Role = "all"
)

// Grouping fields understood by the aggregator.
const (
	ByCharacter  GroupField = "character"
	ByPlayerID   GroupField = "player_id"
	ByPlayerName GroupField = "player_name"
	ByRole       GroupField = "role"
)

const (
	// Wildcard disables an exact-match filter.
	Wildcard = "all"

	// LatestVersion resolves to the most recent game version present in the snapshot.
	LatestVersion = "latest"

	// EmptyMark is rendered in place of an empty list.
	EmptyMark = "–"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid backends for the local stores.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSourceBackends lists all backends a match source can be read from.
var ValidSourceBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidTriStates lists all valid tri-state selections.
var ValidTriStates = map[TriState]struct{}{
	TriAny: {},
	TriYes: {},
	TriNo:  {},
}

// ValidOutcomes lists all valid outcome selections.
var ValidOutcomes = map[Outcome]struct{}{
	OutcomeAll:  {},
	OutcomeWin:  {},
	OutcomeLoss: {},
}

// ValidRoles lists all valid role selections.
var ValidRoles = map[Role]struct{}{
	RoleMain:      {},
	RoleSecondary: {},
	RoleAll:       {},
}
