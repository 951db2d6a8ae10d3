package imaging

import (
	"bufio"
	"reflect"
	"strings"
	"testing"
)

func scanAll(t *testing.T, input string) []string {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(scanProgressLines)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return lines
}

func TestScanProgressLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"newlines only",
			"0+0 records in\n0+0 records out\n",
			[]string{"0+0 records in", "0+0 records out"},
		},
		{
			"carriage return progress reports",
			"1048576 bytes (1.0 MB) copied\r2097152 bytes (2.1 MB) copied\r",
			[]string{"1048576 bytes (1.0 MB) copied", "2097152 bytes (2.1 MB) copied"},
		},
		{
			"mixed progress and final summary",
			"524288 bytes copied\r1024+0 records in\n1024+0 records out\n",
			[]string{"524288 bytes copied", "1024+0 records in", "1024+0 records out"},
		},
		{
			"crlf counts as one terminator",
			"a\r\nb\n",
			[]string{"a", "b"},
		},
		{
			"unterminated final line",
			"dd: error reading '/dev/sdb'",
			[]string{"dd: error reading '/dev/sdb'"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scanAll(t, tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
