package weverse

import "strings"

// phraseEntry maps one content category to the literal message fragments the
// platform uses to announce it. The platform emits notification text in at
// least English and Korean.
type phraseEntry struct {
	kind      NotificationKind
	fragments []string
}

// phraseTable is ordered: the first category with a matching fragment wins.
// The table is the compatibility surface of the classifier — the fragments
// are what the platform actually sends, not a translation.
var phraseTable = []phraseEntry{
	{KindComment, []string{
		"commented on",
		"replied to",
		"댓글을 남겼습니다",
		"답글을 남겼습니다",
	}},
	{KindPost, []string{
		"created a new post",
		"shared a moment",
		"포스트를 올렸습니다",
		"모먼트를 올렸습니다",
	}},
	{KindMedia, []string{
		"Check out the new media",
		"new media",
		"미디어가 등록되었습니다",
	}},
	{KindAnnouncement, []string{
		"New announcement",
		"(광고)",
		"새로운 공지사항",
		"NOTICE",
	}},
}

// Classify assigns a content category by substring-matching the message
// against the phrase table. Unmatched messages stay unclassified; callers
// log them but keep the notification. This is a pure function so the
// string-match behavior can be swapped out in one place if the API ever
// exposes a structured type field (the payload's contentsType tag is carried
// on the entity but deliberately not consulted here).
func Classify(message string) NotificationKind {
	for _, entry := range phraseTable {
		for _, fragment := range entry.fragments {
			if strings.Contains(message, fragment) {
				return entry.kind
			}
		}
	}
	return KindUnclassified
}
