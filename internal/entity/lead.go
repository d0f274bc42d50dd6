package entity

// Lead is a forum thread judged relevant to account-suspension topics.
type Lead struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	ReplyCount int    `json:"reply_count"`
	URL        string `json:"url"`
}

// ThreadFields are the fields recovered from the visible text of one
// thread anchor, before keyword filtering.
type ThreadFields struct {
	Title      string
	Snippet    string
	ReplyCount int
}
