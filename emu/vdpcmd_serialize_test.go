package emu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/tinylib/msgp/msgp"
)

func init() {
	deep.CompareUnexportedFields = true
}

// cloneCmdEngine saves c and restores the block into an engine over a
// copy of c's VRAM.
func cloneCmdEngine(t *testing.T, c *CmdEngine) *CmdEngine {
	t.Helper()
	block := c.AppendState(nil)
	vram := make([]uint8, len(c.vram))
	copy(vram, c.vram)
	d := NewCmdEngine(vram, 0)
	rest, err := d.LoadState(block, 0)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected block fully consumed, %d bytes left", len(rest))
	}
	return d
}

func TestCmdState_RoundTripIdle(t *testing.T) {
	c := makeTestCmdEngine(0x20000)
	c.SetTimingMode(2)
	startCmd(c, cmdArgs{sx: 7, sy: 300, dx: 400, dy: 9, nx: 0x155, ny: 3, cl: 0x21, arg: 0x0C, op: 0x50}, 1234)

	d := cloneCmdEngine(t, c)
	if diff := deep.Equal(c, d); diff != nil {
		t.Errorf("restored engine differs: %v\n%s", diff, spew.Sdump(d))
	}
}

func TestCmdState_ResumeDeterminism(t *testing.T) {
	tests := []struct {
		name string
		mode int
		args cmdArgs
	}{
		{"SRCH", 5, cmdArgs{sx: 3, sy: 300, cl: 9, op: 0x60}},
		{"LINE", 5, cmdArgs{dx: 10, dy: 4, nx: 90, ny: 33, cl: 7, op: 0x73}},
		{"LINE Y major", 6, cmdArgs{dx: 300, dy: 200, nx: 120, ny: 17, cl: 2, arg: 0x0D, op: 0x70}},
		{"LMMV", 5, cmdArgs{dx: 30, dy: 20, nx: 40, ny: 30, cl: 5, op: 0x82}},
		{"LMMM", 7, cmdArgs{sx: 0, sy: 0, dx: 100, dy: 100, nx: 64, ny: 20, op: 0x90}},
		{"HMMV", 8, cmdArgs{dx: 16, dy: 8, nx: 100, ny: 40, cl: 0x3C, op: 0xC0}},
		{"HMMM", 5, cmdArgs{sx: 4, sy: 0, dx: 128, dy: 64, nx: 64, ny: 32, arg: 0x00, op: 0xD0}},
		{"YMMM", 5, cmdArgs{sy: 0, dx: 32, dy: 80, ny: 16, op: 0xE0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := makeTestCmdEngine(0x20000)
			c.SetScreenMode(tt.mode, false)
			for i := range c.vram[:0x4000] {
				c.vram[i] = uint8(i*7 + i>>5)
			}
			startCmd(c, tt.args, 0)
			c.Execute(2000)
			if !c.Busy() {
				t.Fatal("expected command still running after partial budget")
			}

			d := cloneCmdEngine(t, c)

			for clock := uint32(3000); clock < 2000000; clock += 1000 {
				c.Execute(clock)
				d.Execute(clock)
			}
			if c.Busy() {
				t.Fatal("expected command to finish")
			}
			if diff := deep.Equal(c, d); diff != nil {
				t.Errorf("resumed engine diverged: %v", diff)
			}
		})
	}
}

func TestCmdState_ResumeTransfer(t *testing.T) {
	tests := []struct {
		name string
		args cmdArgs
		read bool // CPU acknowledges by reading S#7 instead of writing R#44
	}{
		{"LMMC", cmdArgs{dx: 8, dy: 8, nx: 5, ny: 3, cl: 1, op: 0xB3}, false},
		{"LMCM", cmdArgs{sx: 20, sy: 2, nx: 5, ny: 3, op: 0xA0}, true},
		{"HMMC", cmdArgs{dx: 40, dy: 6, nx: 8, ny: 3, cl: 0x5A, op: 0xF0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := makeTestCmdEngine(0x20000)
			for i := range c.vram[:0x1000] {
				c.vram[i] = uint8(i*13 + i>>3)
			}
			startCmd(c, tt.args, 0)

			// step acknowledges the previous unit and lets the engine move
			// to the next one. LMCM colors are collected per engine.
			var got [2][]uint8
			step := func(e *CmdEngine, n int, i int, clock uint32) {
				if tt.read {
					got[n] = append(got[n], e.GetColor())
				} else {
					e.Write(0x0C, uint8(i*3+1), clock)
				}
				e.Execute(clock)
			}

			clock := uint32(0)
			for i := 0; i < 4; i++ {
				clock += 100
				step(c, 0, i, clock)
			}
			if !c.Busy() {
				t.Fatal("expected transfer still running when saved")
			}

			d := cloneCmdEngine(t, c)
			got[0] = nil
			for i := 4; i < 40; i++ {
				clock += 100
				step(c, 0, i, clock)
				step(d, 1, i, clock)
			}
			if c.Busy() {
				t.Fatalf("expected %s complete", tt.name)
			}
			if diff := deep.Equal(c, d); diff != nil {
				t.Errorf("resumed transfer diverged: %v", diff)
			}
			if diff := deep.Equal(got[0], got[1]); diff != nil {
				t.Errorf("transferred colors diverged: %v", diff)
			}
		})
	}
}

func TestCmdState_ExpansionBankRestored(t *testing.T) {
	c := makeTestCmdEngine(0x30000)
	c.Write(0x0D, 0x30, 0)

	d := cloneCmdEngine(t, c)
	if d.banks.readOffset != 0x20000 || d.banks.writeOffset != 0x20000 {
		t.Errorf("expected both banks on expansion, got read 0x%X write 0x%X",
			d.banks.readOffset, d.banks.writeOffset)
	}
}

func TestCmdState_MissingFields(t *testing.T) {
	b := msgp.AppendMapHeader(nil, 2)
	b = msgp.AppendString(b, "DX")
	b = msgp.AppendInt64(b, 77)
	b = msgp.AppendString(b, "CM")
	b = msgp.AppendInt64(b, 0x18)

	c := makeTestCmdEngine(0x20000)
	c.sy = 99
	if _, err := c.LoadState(b, 5000); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if c.dx != 77 {
		t.Errorf("expected DX 77, got %d", c.dx)
	}
	if c.cm != 0x08 {
		t.Errorf("expected CM masked to 0x08, got 0x%02X", c.cm)
	}
	if c.sy != 0 {
		t.Errorf("expected missing SY to read as 0, got %d", c.sy)
	}
	if c.systemTime != 5000 {
		t.Errorf("expected systemTime to default to clock, got %d", c.systemTime)
	}
}

func TestCmdState_UnknownKeySkipped(t *testing.T) {
	b := msgp.AppendMapHeader(nil, 3)
	b = msgp.AppendString(b, "future")
	b = msgp.AppendString(b, "not a number")
	b = msgp.AppendString(b, "SX")
	b = msgp.AppendInt64(b, 12)
	b = msgp.AppendString(b, "timingMode")
	b = msgp.AppendInt64(b, 7)
	b = append(b, 0xAA)

	c := makeTestCmdEngine(0x20000)
	rest, err := c.LoadState(b, 0)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if c.sx != 12 {
		t.Errorf("expected SX 12, got %d", c.sx)
	}
	if c.timingMode != 3 {
		t.Errorf("expected timing mode clamped to 3, got %d", c.timingMode)
	}
	if len(rest) != 1 || rest[0] != 0xAA {
		t.Errorf("expected trailing byte returned, got %v", rest)
	}
}

func TestCmdState_Truncated(t *testing.T) {
	c := makeTestCmdEngine(0x20000)
	block := c.AppendState(nil)
	if _, err := c.LoadState(block[:len(block)-1], 0); err == nil {
		t.Error("expected error for truncated block")
	}
	if _, err := c.LoadState(nil, 0); err == nil {
		t.Error("expected error for empty block")
	}
}
