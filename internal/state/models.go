package state

import "gorm.io/gorm"

// Artifact ownership kinds.
const (
	// KindManaged marks files fogoctl owns and rewrites (convenience scripts).
	KindManaged = "managed"
	// KindUserOwned marks files fogoctl creates once and never touches again
	// (credential and proxy templates, the dependency manifest).
	KindUserOwned = "user_owned"
)

// Run records a single fogoctl invocation and its outcome.
type Run struct {
	gorm.Model

	Command    string `gorm:"type:varchar(32);not null"`
	Succeeded  bool   `gorm:"not null"`
	Warnings   int    `gorm:"not null"`
	DurationMs int64  `gorm:"not null"`
}

// Artifact tracks a filesystem artifact fogoctl has scaffolded.
// The hash lets later runs distinguish user edits from generated content.
type Artifact struct {
	gorm.Model

	Path string `gorm:"uniqueIndex;not null"`
	Kind string `gorm:"type:varchar(32);not null"`
	Hash string `gorm:"type:varchar(128);not null"`
}

// InstalledPackage records the last install attempt per manifest entry,
// including whether the pinned version had to be abandoned.
type InstalledPackage struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"`
	// Spec is what was actually handed to pip ("name==version" or "name").
	Spec      string `gorm:"type:varchar(255);not null"`
	Pinned    bool   `gorm:"not null"`
	Succeeded bool   `gorm:"not null"`
}
