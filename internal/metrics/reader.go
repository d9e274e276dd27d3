package metrics

import (
	"os"
	"strconv"
	"strings"

	"codeberg.org/mutker/runkat/internal/logger"
)

const (
	defaultProcStat = "/proc/stat"
	defaultCPUDir   = "/sys/devices/system/cpu"
	defaultHwmonDir = "/sys/class/hwmon"
)

// Reader takes single measurements from the operating system. It holds only
// filesystem locations; every call reads afresh.
type Reader struct {
	ProcStat  string
	CPUDir    string
	HwmonDir  string
	OnFailure FailureFunc

	log logger.Logger
}

// NewReader returns a Reader for the live system.
func NewReader() *Reader {
	return &Reader{
		ProcStat: defaultProcStat,
		CPUDir:   defaultCPUDir,
		HwmonDir: defaultHwmonDir,
		log:      logger.New("metrics"),
	}
}

func (r *Reader) fail(source Source, err error) {
	if r.log != nil {
		r.log.Debug().Err(err).Str("source", source.String()).Msg("metric read failed")
	}
	if r.OnFailure != nil {
		r.OnFailure(source, err)
	}
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func readInt(path string) (int64, error) {
	s, err := readTrimmed(path)
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(s, 10, 64)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}

	return v
}
