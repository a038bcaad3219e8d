package models

// ArticleState is the position of one article in the per-article pipeline
// state machine. FetchFailed and NoContent are terminal skip states; Assembled
// is the sole success terminal.
type ArticleState string

// Pipeline states, in processing order.
const (
	StateQueued      ArticleState = "queued"
	StateFetching    ArticleState = "fetching"
	StateFetched     ArticleState = "fetched"
	StateFetchFailed ArticleState = "fetch_failed"
	StateExtracting  ArticleState = "extracting"
	StateExtracted   ArticleState = "extracted"
	StateNoContent   ArticleState = "no_content"
	StateNormalizing ArticleState = "normalizing"
	StateNormalized  ArticleState = "normalized"
	StateScoring     ArticleState = "scoring"
	StateScored      ArticleState = "scored"
	StateAssembled   ArticleState = "assembled"
)

// IsTerminal reports whether the state ends an article's run.
func (s ArticleState) IsTerminal() bool {
	return s == StateAssembled || s.IsSkip()
}

// IsSkip reports whether the state excludes the article from the output table
// while letting the rest of the run continue.
func (s ArticleState) IsSkip() bool {
	return s == StateFetchFailed || s == StateNoContent
}

// String returns the state's wire name.
func (s ArticleState) String() string {
	return string(s)
}

// Skip records why an article was excluded from the output. The reason is kept
// for the run report and the ledger rather than discarded.
type Skip struct {
	Ref    ArticleRef   `json:"ref"`
	State  ArticleState `json:"state"`
	Reason string       `json:"reason"`
}
