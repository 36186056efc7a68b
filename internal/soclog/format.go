package soclog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/akvileja/soclog-tools/internal/game"
)

// FileExtension is the conventional suffix for stored event logs.
const FileExtension = ".soclog"

var (
	ErrNoHeader      = errors.New("soclog: missing header line")
	ErrBadHeader     = errors.New("soclog: malformed header")
	ErrBadLogType    = errors.New("soclog: unknown log type")
	ErrNoAtClientPN  = errors.New("soclog: at-client log without at_client_pn")
	ErrUnknownForVer = errors.New("soclog: unsupported format version")
)

const headerPrefix = "soclog: "

// Load reads an event log from its text form. It fails on a malformed
// header; malformed entry lines fail with their line number.
func Load(r io.Reader) (*EventLog, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoHeader
	}
	log, err := parseHeader(sc.Text())
	if err != nil {
		return nil, err
	}

	lineNum := 1
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if e.TimeElapsedMS >= 0 {
			log.HasTimestamps = true
		}
		log.Entries = append(log.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return log, nil
}

// LoadFile reads an event log from a file.
func LoadFile(path string) (*EventLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return log, nil
}

func parseHeader(line string) (*EventLog, error) {
	if !strings.HasPrefix(line, headerPrefix) {
		return nil, ErrNoHeader
	}
	log := &EventLog{AtClientPN: -1}
	sawType := false
	for _, part := range strings.Split(line[len(headerPrefix):], ", ") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadHeader, part)
		}
		switch key {
		case "type":
			sawType = true
			switch val {
			case "F":
				// full log, the default fields are right
			case "C":
				log.IsAtClient = true
			default:
				return nil, fmt.Errorf("%w: %q", ErrBadLogType, val)
			}
		case "version":
			v, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("%w: version %q", ErrBadHeader, val)
			}
			log.Version = v
		case "game_name":
			log.GameName = val
		case "opts":
			log.OptsStr = val
		case "at_client_pn":
			pn, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("%w: at_client_pn %q", ErrBadHeader, val)
			}
			log.AtClientPN = pn
		}
	}
	if !sawType {
		return nil, fmt.Errorf("%w: no type field", ErrBadHeader)
	}
	if log.IsAtClient && log.AtClientPN < 0 {
		return nil, ErrNoAtClientPN
	}
	return log, nil
}

// Save writes the log in its text form.
func (l *EventLog) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%stype=%s, version=%d, game_name=%s",
		headerPrefix, map[bool]string{false: "F", true: "C"}[l.IsAtClient],
		l.Version, l.GameName)
	if l.OptsStr != "" {
		fmt.Fprintf(bw, ", opts=%s", l.OptsStr)
	}
	if l.IsAtClient {
		fmt.Fprintf(bw, ", at_client_pn=%d", l.AtClientPN)
	}
	bw.WriteByte('\n')
	for _, e := range l.Entries {
		bw.WriteString(e.String())
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// String renders the entry as one log line.
func (e Entry) String() string {
	var b strings.Builder
	if e.TimeElapsedMS >= 0 {
		ms := e.TimeElapsedMS
		fmt.Fprintf(&b, "%d:%02d.%03d:", ms/60000, (ms/1000)%60, ms%1000)
	}
	if e.IsComment() {
		b.WriteByte('#')
		b.WriteString(e.Comment)
		return b.String()
	}
	b.WriteString(e.audiencePrefix())
	b.WriteByte(':')
	b.WriteString(e.Message.Type().String())
	if body := encodeMessageBody(e.Message); body != "" {
		b.WriteByte(':')
		b.WriteString(body)
	}
	return b.String()
}

func (e Entry) audiencePrefix() string {
	switch {
	case e.FromClient && e.PN >= 0:
		return "f" + strconv.Itoa(e.PN)
	case e.FromClient:
		return "fo"
	case len(e.ExcludedPN) == 1:
		return "!p" + strconv.Itoa(e.ExcludedPN[0])
	case len(e.ExcludedPN) > 1:
		parts := make([]string, len(e.ExcludedPN))
		for i, pn := range e.ExcludedPN {
			parts[i] = strconv.Itoa(pn)
		}
		return "!p[" + strings.Join(parts, ", ") + "]"
	case e.PN == -1:
		return "all"
	case e.PN == game.PNObserver:
		return "ob"
	case e.PN == game.PNReplyToUndetermined:
		return "un"
	default:
		return "p" + strconv.Itoa(e.PN)
	}
}

// ParseEntry parses one non-blank log line (without its newline).
func ParseEntry(line string) (Entry, error) {
	e := Entry{PN: -1, TimeElapsedMS: -1}

	// optional "m:ss.ddd:" timestamp
	if min, rest, ok := splitTimestamp(line); ok {
		e.TimeElapsedMS = min
		line = rest
	}

	if strings.HasPrefix(line, "#") {
		e.Comment = line[1:]
		return e, nil
	}

	audience, rest, ok := strings.Cut(line, ":")
	if !ok {
		return Entry{}, fmt.Errorf("soclog: no audience prefix in %q", line)
	}
	if err := e.parseAudience(audience); err != nil {
		return Entry{}, err
	}

	name, body, _ := strings.Cut(rest, ":")
	mt, ok := messageTypesByName[name]
	if !ok {
		return Entry{}, fmt.Errorf("soclog: unknown message type %q", name)
	}
	msg, err := decodeMessageBody(mt, body)
	if err != nil {
		return Entry{}, err
	}
	e.Message = msg
	return e, nil
}

// splitTimestamp recognizes a leading "m:ss.ddd:" and returns the elapsed
// milliseconds and the rest of the line.
func splitTimestamp(line string) (int, string, bool) {
	i := strings.IndexByte(line, ':')
	if i <= 0 {
		return 0, "", false
	}
	minStr := line[:i]
	for _, c := range minStr {
		if c < '0' || c > '9' {
			return 0, "", false
		}
	}
	rest := line[i+1:]
	// "ss.ddd:" is fixed width
	if len(rest) < 7 || rest[2] != '.' || rest[6] != ':' {
		return 0, "", false
	}
	sec, err1 := strconv.Atoi(rest[:2])
	ms, err2 := strconv.Atoi(rest[3:6])
	if err1 != nil || err2 != nil {
		return 0, "", false
	}
	min, _ := strconv.Atoi(minStr)
	return min*60000 + sec*1000 + ms, rest[7:], true
}

func (e *Entry) parseAudience(s string) error {
	switch {
	case s == "all":
		e.PN = -1
	case s == "ob":
		e.PN = game.PNObserver
	case s == "un":
		e.PN = game.PNReplyToUndetermined
	case s == "fo":
		e.FromClient = true
		e.PN = game.PNObserver
	case strings.HasPrefix(s, "!p["):
		if !strings.HasSuffix(s, "]") {
			return fmt.Errorf("soclog: bad audience %q", s)
		}
		for _, part := range strings.Split(s[3:len(s)-1], ",") {
			pn, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("soclog: bad audience %q", s)
			}
			e.ExcludedPN = append(e.ExcludedPN, pn)
		}
	case strings.HasPrefix(s, "!p"):
		pn, err := strconv.Atoi(s[2:])
		if err != nil {
			return fmt.Errorf("soclog: bad audience %q", s)
		}
		e.ExcludedPN = []int{pn}
	case strings.HasPrefix(s, "f"):
		pn, err := strconv.Atoi(s[1:])
		if err != nil {
			return fmt.Errorf("soclog: bad audience %q", s)
		}
		e.FromClient = true
		e.PN = pn
	case strings.HasPrefix(s, "p"):
		pn, err := strconv.Atoi(s[1:])
		if err != nil {
			return fmt.Errorf("soclog: bad audience %q", s)
		}
		e.PN = pn
	default:
		return fmt.Errorf("soclog: bad audience %q", s)
	}
	return nil
}
