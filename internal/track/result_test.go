package track

import "testing"

func TestFingerprintMatchMatchesTrack(t *testing.T) {
	expected := Track{Title: "Shape of You", Artist: "Ed Sheeran"}

	tests := []struct {
		name  string
		match FingerprintMatch
		want  bool
	}{
		{
			name:  "case differences only",
			match: FingerprintMatch{Title: "Shape Of You", Artist: "ed sheeran"},
			want:  true,
		},
		{
			name:  "wrong artist rejects despite close title",
			match: FingerprintMatch{Title: "Shape of You (Cover)", Artist: "Someone Else"},
			want:  false,
		},
		{
			name:  "empty identification rejects",
			match: FingerprintMatch{},
			want:  false,
		},
		{
			name:  "unrelated track rejects",
			match: FingerprintMatch{Title: "Bohemian Rhapsody", Artist: "Queen"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.match.MatchesTrack(expected, 0.7); got != tt.want {
				t.Errorf("MatchesTrack = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDownloadResultPredicates(t *testing.T) {
	success := DownloadResult{Status: StatusSuccess, FilePath: "/music/a.mp3"}
	if !success.IsSuccess() {
		t.Error("success result should report IsSuccess")
	}
	if !success.NeedsVerification() {
		t.Error("fresh success with a file should need verification")
	}

	verified := DownloadResult{Status: StatusVerified, FilePath: "/music/a.mp3"}
	if !verified.IsSuccess() {
		t.Error("verified result should report IsSuccess")
	}
	if verified.NeedsVerification() {
		t.Error("verified result should not need verification again")
	}

	failed := DownloadResult{Status: StatusFailed}
	if failed.IsSuccess() || failed.NeedsVerification() {
		t.Error("failed result should be neither successful nor verifiable")
	}

	noFile := DownloadResult{Status: StatusSuccess}
	if noFile.NeedsVerification() {
		t.Error("success without a file path cannot be verified")
	}
}
