package types

// OrganizeMode selects how destination directories are derived.
type OrganizeMode string

const (
	ModeExtension OrganizeMode = "extension"
	ModeDate      OrganizeMode = "date"
	ModeSize      OrganizeMode = "size"
)

// Valid reports whether the mode is one of the supported values.
func (m OrganizeMode) Valid() bool {
	switch m {
	case ModeExtension, ModeDate, ModeSize:
		return true
	}
	return false
}

// DuplicatePolicy selects what happens when a destination path is
// already occupied.
type DuplicatePolicy string

const (
	PolicyRename    DuplicatePolicy = "rename"
	PolicyOverwrite DuplicatePolicy = "overwrite"
	PolicySkip      DuplicatePolicy = "skip"
)

// Valid reports whether the policy is one of the supported values.
func (p DuplicatePolicy) Valid() bool {
	switch p {
	case PolicyRename, PolicyOverwrite, PolicySkip:
		return true
	}
	return false
}
