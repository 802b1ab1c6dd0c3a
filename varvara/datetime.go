package varvara

import (
	"time"

	"github.com/coldbrew/uxnvm/uxn"
)

const datetimeBase = 0xC0

// Datetime ports, offsets within the 0xC0 slot. DEI-only: reading any of
// these refreshes the whole slot from the host clock first, so every
// read is internally consistent with the others.
const (
	dtYear   = 0x00 // +0x01, short
	dtMonth  = 0x02
	dtDay    = 0x03
	dtHour   = 0x04
	dtMinute = 0x05
	dtSecond = 0x06
	dtDotw   = 0x07
	dtDoy    = 0x08 // +0x09, short
	dtIsDst  = 0x0A
)

// Datetime implements slot 0xC0. It holds no state of its own; every DEI
// reads straight through to time.Now(), matching the original source's
// treatment of datetime as a pure host-clock mirror rather than
// something the ROM can set.
type Datetime struct{}

func (d *Datetime) Dei(cpu *uxn.CPU, target byte) {
	now := time.Now()
	cpu.WriteDev16(datetimeBase|dtYear, uint16(now.Year()))
	cpu.WriteDev(datetimeBase|dtMonth, byte(now.Month()))
	cpu.WriteDev(datetimeBase|dtDay, byte(now.Day()))
	cpu.WriteDev(datetimeBase|dtHour, byte(now.Hour()))
	cpu.WriteDev(datetimeBase|dtMinute, byte(now.Minute()))
	cpu.WriteDev(datetimeBase|dtSecond, byte(now.Second()))
	cpu.WriteDev(datetimeBase|dtDotw, byte(now.Weekday()))
	cpu.WriteDev16(datetimeBase|dtDoy, uint16(now.YearDay()-1))
	if isDST(now) {
		cpu.WriteDev(datetimeBase|dtIsDst, 1)
	} else {
		cpu.WriteDev(datetimeBase|dtIsDst, 0)
	}
}

// isDST compares the current zone offset against January's for the same
// location: the standard library has no direct DST query, and this is
// the common idiom for deriving one.
func isDST(t time.Time) bool {
	_, offset := t.Zone()
	jan := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	_, janOffset := jan.Zone()
	return offset != janOffset
}
