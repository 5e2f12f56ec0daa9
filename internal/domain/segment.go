package domain

// Segment is one aligned source/target sentence pair under review. Segments
// belong to exactly one project and are replaced wholesale when a bitext is
// re-uploaded, never partially patched.
type Segment struct {
	ID         string
	ProjectID  string
	Seq        int
	SourceText string
	TargetText string
}
