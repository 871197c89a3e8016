package ffprobe

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDurationInvokesFFprobe(t *testing.T) {
	var gotName string
	var gotArgs []string
	prober := New("", func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte("12.480000\n"), nil
	})
	d, err := prober.Duration(context.Background(), "/videos/abc.mp4")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if d != 12.48 {
		t.Fatalf("unexpected duration %v", d)
	}
	if gotName != "ffprobe" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	want := "-v quiet -show_entries format=duration -of default=noprint_wrappers=1:nokey=1 /videos/abc.mp4"
	if strings.Join(gotArgs, " ") != want {
		t.Fatalf("unexpected args %q", strings.Join(gotArgs, " "))
	}
}

func TestDurationPropagatesRunnerError(t *testing.T) {
	prober := New("ffprobe", func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})
	if _, err := prober.Duration(context.Background(), "x.mp4"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"30.5", 30.5, false},
		{" 7\n", 7, false},
		{"", 0, true},
		{"N/A", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseDuration(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseDuration(%q) err=%v wantErr=%v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDuration(%q)=%v want %v", tc.in, got, tc.want)
		}
	}
}
