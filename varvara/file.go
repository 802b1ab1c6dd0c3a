package varvara

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/coldbrew/uxnvm/uxn"
)

// File ports, offsets within each of the two 16-byte slots (0xA0, 0xB0).
const (
	fileVector = 0x00 // +0x01, unused by this peripheral
	fileSucc   = 0x02 // +0x03, byte count of the last operation, or 0 on failure
	fileStat   = 0x04 // +0x05, address to write the stat result (the file's base name) into
	fileDelete = 0x06
	fileAppend = 0x07
	fileName   = 0x08 // +0x09, pointer to a null-terminated path in main memory
	fileLength = 0x0A // +0x0B
	fileRead   = 0x0C // +0x0D
	fileWrite  = 0x0E // +0x0F
)

// File implements one instance of the file peripheral: sandboxed
// read/write/stat against a single named path, rooted under a caller-
// chosen directory so a ROM can never escape it.
type File struct {
	root string
	path string
}

func newFile(root string) File {
	return File{root: root}
}

func (f *File) Dei(cpu *uxn.CPU, target byte) {
	// every port here is either write-only or refreshed on write; DEI
	// just returns whatever was last poked into the device page.
	_ = cpu
	_ = target
}

func (f *File) Deo(cpu *uxn.CPU, target byte) {
	base := target & 0xF0
	switch target & 0x0F {
	case fileName + 1:
		f.open(cpu, base)
	case fileLength + 1:
		// length alone doesn't trigger a transfer; read/write ports do
	case fileRead + 1:
		f.doRead(cpu, base)
	case fileWrite + 1:
		f.doWrite(cpu, base)
	case fileStat + 1:
		f.doStat(cpu, base)
	case fileDelete:
		f.doDelete(cpu, base)
	}
}

// resolve maps a ROM-supplied path onto the sandbox root. The name is
// cleaned as if rooted at "/", so ".." components and absolute paths
// are confined to the root instead of escaping it; an error is returned
// only if the joined result still falls outside the root.
func (f *File) resolve(name string) (string, error) {
	clean := filepath.Clean("/" + name)
	joined := filepath.Join(f.root, clean)
	rel, err := filepath.Rel(f.root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("path %q escapes sandbox root", name)
	}
	return joined, nil
}

func readCString(cpu *uxn.CPU, addr uint16) string {
	var b strings.Builder
	for {
		c := cpu.Read8(addr)
		if c == 0 {
			break
		}
		b.WriteByte(c)
		addr++
	}
	return b.String()
}

func (f *File) open(cpu *uxn.CPU, base byte) {
	ptr := cpu.ReadDev16(base | fileName)
	name := readCString(cpu, ptr)
	path, err := f.resolve(name)
	if err != nil {
		cpu.WriteDev16(base|fileSucc, 0)
		return
	}
	f.path = path
	cpu.WriteDev16(base|fileSucc, 0)
}

func (f *File) doRead(cpu *uxn.CPU, base byte) {
	length := cpu.ReadDev16(base | fileLength)
	dest := cpu.ReadDev16(base | fileRead)

	file, err := os.Open(f.path)
	if err != nil {
		cpu.WriteDev16(base|fileSucc, 0)
		return
	}
	defer file.Close()

	buf := make([]byte, length)
	n, _ := file.Read(buf)
	for i := 0; i < n; i++ {
		cpu.Write8(dest+uint16(i), buf[i])
	}
	cpu.WriteDev16(base|fileSucc, uint16(n))
}

func (f *File) doWrite(cpu *uxn.CPU, base byte) {
	length := cpu.ReadDev16(base | fileLength)
	src := cpu.ReadDev16(base | fileWrite)
	appendMode := cpu.ReadDev(base|fileAppend) != 0

	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(f.path, flags, 0644)
	if err != nil {
		cpu.WriteDev16(base|fileSucc, 0)
		return
	}
	defer file.Close()

	buf := make([]byte, length)
	for i := range buf {
		buf[i] = cpu.Read8(src + uint16(i))
	}
	n, _ := file.Write(buf)
	cpu.WriteDev16(base|fileSucc, uint16(n))
}

// doStat writes the target's file name to the stat pointer, truncated
// to the length given in the length port; a nonexistent path reports
// zero bytes written rather than faulting.
func (f *File) doStat(cpu *uxn.CPU, base byte) {
	dest := cpu.ReadDev16(base | fileStat)
	limit := int(cpu.ReadDev16(base | fileLength))

	if _, err := os.Stat(f.path); err != nil {
		cpu.WriteDev16(base|fileSucc, 0)
		return
	}
	name := filepath.Base(f.path)
	if limit > 0 && limit < len(name) {
		name = name[:limit]
	}
	for i := 0; i < len(name); i++ {
		cpu.Write8(dest+uint16(i), name[i])
	}
	cpu.WriteDev16(base|fileSucc, uint16(len(name)))
}

// doDelete removes the currently opened path; success count carries no
// byte total here, just a 1/0 outcome flag.
func (f *File) doDelete(cpu *uxn.CPU, base byte) {
	if err := os.Remove(f.path); err != nil {
		cpu.WriteDev16(base|fileSucc, 0)
		return
	}
	cpu.WriteDev16(base|fileSucc, 1)
}
