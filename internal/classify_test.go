package weverse

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    NotificationKind
	}{
		{"comment english", "HANNI commented on the post.", KindComment},
		{"reply english", "DANIELLE replied to your comment.", KindComment},
		{"comment korean", "민지님이 댓글을 남겼습니다.", KindComment},
		{"reply korean", "하니님이 답글을 남겼습니다.", KindComment},
		{"post english", "HAERIN created a new post!", KindPost},
		{"moment english", "MINJI shared a moment with you.", KindPost},
		{"post korean", "해린님이 포스트를 올렸습니다.", KindPost},
		{"moment korean", "혜인님이 모먼트를 올렸습니다.", KindPost},
		{"media announce", "Check out the new media from NewJeans!", KindMedia},
		{"media generic", "A new media drop is up.", KindMedia},
		{"media korean", "새로운 미디어가 등록되었습니다.", KindMedia},
		{"announcement english", "New announcement for fans.", KindAnnouncement},
		{"announcement ad tag", "(광고) 위버스샵 특별 혜택", KindAnnouncement},
		{"announcement korean", "새로운 공지사항이 있습니다.", KindAnnouncement},
		{"announcement notice", "[NOTICE] Service maintenance", KindAnnouncement},
		{"unmatched", "completely unrelated text", KindUnclassified},
		{"empty", "", KindUnclassified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.message); got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.message, got, tc.want)
			}
		})
	}
}

// Table order resolves messages matching fragments of more than one category:
// the earliest category wins, so a reply to a "new post" stays a comment.
func TestClassifyTableOrder(t *testing.T) {
	msg := "HANNI commented on the created a new post"
	if got := Classify(msg); got != KindComment {
		t.Errorf("Classify(%q) = %q, want %q", msg, got, KindComment)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	msg := "MINJI created a new post!"
	first := Classify(msg)
	for i := 0; i < 100; i++ {
		if got := Classify(msg); got != first {
			t.Fatalf("iteration %d: got %q, want %q", i, got, first)
		}
	}
}
