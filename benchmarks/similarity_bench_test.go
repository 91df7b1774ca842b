package benchmarks

import (
	"fmt"
	"testing"

	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/similarity"
)

func makeSubmissions(n int) []dto.Submission {
	subs := make([]dto.Submission, 0, n)
	for i := 0; i < n; i++ {
		subs = append(subs, dto.Submission{
			Author: fmt.Sprintf("user %d@school", i%(n/2+1)),
			Source: []byte(fmt.Sprintf("int main() { return %d; }\n", i)),
		})
	}
	return subs
}

func BenchmarkStage100(b *testing.B) {
	subs := makeSubmissions(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := similarity.Stage(b.TempDir(), subs, "cpp"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSanitizeName(b *testing.B) {
	names := []string{"alice", "../etc/passwd", "Иван Петров", "user.name-1", "..."}
	for i := 0; i < b.N; i++ {
		similarity.SanitizeName(names[i%len(names)])
	}
}

func BenchmarkRebuildViewerURL(b *testing.B) {
	resolver, err := similarity.NewStaticBaseURL("https://oj.example.com/contest/spring/jplag")
	if err != nil {
		b.Fatal(err)
	}
	stored := "/static/jplag-viewer/?file=/static/jplag_reports/spring/p1/C%2B%2B/results.jplag"
	for i := 0; i < b.N; i++ {
		similarity.RebuildViewerURL(stored, "/static/jplag-viewer/", resolver)
	}
}
