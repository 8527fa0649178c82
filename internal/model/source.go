package model

// Path represents a file system path.
type Path string

// File represents a Vel source file on disk. ShortPath is relative to
// the scan root and is what diagnostics print; Hash fingerprints the
// content so unchanged files can reuse cached reports.
type File struct {
	FullPath  Path
	ShortPath Path
	Hash      string
}

// Source is one compilation unit queued for analysis.
type Source struct {
	Origin *File
}

// UnitSummary holds the declaration counts of a parsed unit, for the
// list command.
type UnitSummary struct {
	Path      Path
	Functions int
	Structs   int
	Globals   int
}
