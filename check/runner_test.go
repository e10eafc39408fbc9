// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// toolRecorder stands in for the real tool invocation seams, recording every
// argument vector that would have been executed.
type toolRecorder struct {
	mu       sync.Mutex
	calls    [][]string
	captures map[string]string // argv (space-joined) -> canned output
	runErr   error             // error to return from every streamed invocation
}

func (t *toolRecorder) install() {
	t.captures = map[string]string{}
	origLookPath, origRun, origCapture := lookPath, runTool, captureTool
	lookPath = func(tool string) (string, error) { return "/usr/bin/" + tool, nil }
	runTool = func(ctx context.Context, w io.Writer, argv ...string) error {
		t.record(argv)
		fmt.Fprintf(w, "output of %s\n", argv[0])
		return t.runErr
	}
	captureTool = func(ctx context.Context, argv ...string) (string, error) {
		t.record(argv)
		return t.captures[strings.Join(argv, " ")], nil
	}
	DeferCleanup(func() {
		lookPath, runTool, captureTool = origLookPath, origRun, origCapture
	})
}

func (t *toolRecorder) record(argv []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, argv)
}

// invocationsOf returns all recorded argument vectors of the specified tool.
func (t *toolRecorder) invocationsOf(tool string) [][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	invs := [][]string{}
	for _, argv := range t.calls {
		if argv[0] == tool {
			invs = append(invs, argv)
		}
	}
	return invs
}

var _ = Describe("diagnostic runner", func() {

	var (
		rec *toolRecorder
		out *bytes.Buffer
	)

	BeforeEach(func() {
		rec = &toolRecorder{}
		rec.install()
		out = &bytes.Buffer{}
	})

	sectionHeaders := func() []string {
		headers := []string{}
		for _, step := range newSteps() {
			headers = append(headers, step.Title)
		}
		return headers
	}

	It("defines exactly ten checks with their documented tools", func() {
		steps := New(out).Steps()
		Expect(steps).To(HaveLen(10))
		tools := []string{}
		for _, step := range steps {
			tools = append(tools, step.Tool)
		}
		Expect(tools).To(Equal([]string{
			"dig", "dig", "dig", "whois", "nslookup",
			"curl", "ping", "traceroute", "dig", "",
		}))
	})

	It("runs all ten sections in their fixed order", func(ctx context.Context) {
		New(out).Diagnose(ctx, "example.com")
		rendered := out.String()
		at := -1
		for _, header := range sectionHeaders() {
			idx := strings.Index(rendered, header)
			Expect(idx).To(BeNumerically(">", at), "section %q out of order", header)
			at = idx
		}
	})

	It("keeps going when every tool invocation fails", func(ctx context.Context) {
		rec.runErr = errors.New("exit status 9")
		New(out).Diagnose(ctx, "example.com")
		rendered := out.String()
		for _, header := range sectionHeaders() {
			Expect(rendered).To(ContainSubstring(header))
		}
	})

	It("substitutes even an empty domain verbatim", func(ctx context.Context) {
		New(out).Diagnose(ctx, "")
		Expect(rec.invocationsOf("dig")[0]).To(Equal(
			[]string{"dig", "+noall", "+answer", "", "A"}))
		for _, header := range sectionHeaders() {
			Expect(out.String()).To(ContainSubstring(header))
		}
	})

	It("skips a step whose tool is missing with a single warning line", func(ctx context.Context) {
		origLookPath := lookPath
		lookPath = func(tool string) (string, error) {
			if tool == "whois" {
				return "", errors.New("executable file not found in $PATH")
			}
			return origLookPath(tool)
		}
		New(out).Diagnose(ctx, "example.com")

		Expect(rec.invocationsOf("whois")).To(BeEmpty())
		lines := strings.Split(out.String(), "\n")
		warnIdx := -1
		for idx, line := range lines {
			if strings.Contains(line, "whois not available; skip") {
				warnIdx = idx
				break
			}
		}
		// the warning must be the section's only content: it directly follows
		// the section header and the next section header follows right after.
		Expect(warnIdx).To(BeNumerically(">=", 1))
		Expect(lines[warnIdx-1]).To(ContainSubstring("WHOIS registration data"))
		next := warnIdx + 1
		for next < len(lines) && strings.TrimSpace(lines[next]) == "" {
			next++
		}
		Expect(lines[next]).To(ContainSubstring("Resolver-level lookup"))
	})

	It("attempts HTTPS first and HTTP second, each independently", func(ctx context.Context) {
		New(out).Diagnose(ctx, "example.com")
		curls := rec.invocationsOf("curl")
		Expect(curls).To(HaveLen(2))
		Expect(curls[0][len(curls[0])-1]).To(Equal("https://example.com"))
		Expect(curls[1][len(curls[1])-1]).To(Equal("http://example.com"))
	})

	It("still attempts HTTP when HTTPS already failed", func(ctx context.Context) {
		rec.runErr = errors.New("exit status 7")
		New(out).Diagnose(ctx, "example.com")
		Expect(rec.invocationsOf("curl")).To(HaveLen(2))
	})

	It("reverse-resolves each IPv4 answer in order, duplicates included", func(ctx context.Context) {
		rec.captures["dig +short example.com A"] = strings.Join([]string{
			"cdn.example.net.", // CNAME chain target, not an address
			"192.0.2.1",
			"192.0.2.2",
			"192.0.2.1",
			"",
		}, "\n")
		New(out).Diagnose(ctx, "example.com")

		ptrs := [][]string{}
		for _, argv := range rec.invocationsOf("dig") {
			if len(argv) >= 4 && argv[2] == "-x" {
				ptrs = append(ptrs, argv)
			}
		}
		Expect(ptrs).To(Equal([][]string{
			{"dig", "+short", "-x", "192.0.2.1"},
			{"dig", "+short", "-x", "192.0.2.2"},
			{"dig", "+short", "-x", "192.0.2.1"},
		}))
	})

	It("warns instead of reverse-resolving when there are no A records", func(ctx context.Context) {
		New(out).Diagnose(ctx, "example.com")
		for _, argv := range rec.invocationsOf("dig") {
			Expect(argv).NotTo(ContainElement("-x"))
		}
		Expect(out.String()).To(ContainSubstring("no A records found; skipping reverse lookups"))
	})

	It("truncates long WHOIS output", func(ctx context.Context) {
		lines := make([]string, 150)
		for i := range lines {
			lines[i] = fmt.Sprintf("whois-line-%d", i+1)
		}
		rec.captures["whois example.com"] = strings.Join(lines, "\n")
		New(out).Diagnose(ctx, "example.com")

		rendered := out.String()
		Expect(rendered).To(ContainSubstring("whois-line-120"))
		Expect(rendered).NotTo(ContainSubstring("whois-line-121"))
		Expect(rendered).To(ContainSubstring("truncated after 120 lines"))
	})

	It("assesses DNSSEC from DNSKEY/DS presence only", func(ctx context.Context) {
		New(out).Diagnose(ctx, "example.com")
		Expect(out.String()).To(ContainSubstring("DNSSEC appears not to be configured"))

		out.Reset()
		rec.captures["dig +short example.com DNSKEY"] = "257 3 13 mdsswUyr3DPW132mOi8V9xESWE8jTo0dxCjjnopKl+GqJxpVXckHAeF+KkxLbxILfDLUT0rAK9iUzy1L53eKGQ==\n"
		New(out).Diagnose(ctx, "example.com")
		Expect(out.String()).To(ContainSubstring("DNSSEC likely configured"))
	})

})
