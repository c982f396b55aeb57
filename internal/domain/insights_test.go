package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsights(t *testing.T) {
	tests := []struct {
		name  string
		state RepositoryState
		want  []string
	}{
		{
			name:  "clean",
			state: RepositoryState{CurrentBranch: "main", Tracking: &Tracking{Upstream: "origin/main"}},
			want:  []string{"Repository is clean and up to date"},
		},
		{
			name: "conflicts first",
			state: RepositoryState{
				CurrentBranch:   "main",
				ConflictedFiles: []string{"a.go"},
				StagedFiles:     []FileChange{{Path: "b.go", Kind: ChangeModified}},
			},
			want: []string{"1 file(s) have merge conflicts", "You have staged changes ready to commit"},
		},
		{
			name: "diverged from upstream",
			state: RepositoryState{
				CurrentBranch: "main",
				Tracking:      &Tracking{Upstream: "origin/main", Ahead: 2, Behind: 1},
			},
			want: []string{"Your branch is 1 commit(s) behind origin/main", "Your branch is 2 commit(s) ahead of origin/main"},
		},
		{
			name: "no upstream",
			state: RepositoryState{
				CurrentBranch: "feature/x",
				Remotes:       []Remote{{Name: "origin"}},
				RecentCommits: []Commit{{Hash: "abc"}},
			},
			want: []string{"Branch 'feature/x' has no upstream"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, insight := range tt.state.Insights() {
				got = append(got, insight.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
