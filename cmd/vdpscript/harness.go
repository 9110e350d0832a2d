package main

import (
	"fmt"

	"github.com/user-none/emsx/emu"
	lua "github.com/yuin/gopher-lua"
)

// harness is a command engine on its own VRAM, driven by Lua.
type harness struct {
	vram  []uint8
	cmd   *emu.CmdEngine
	clock uint32 // Last clock passed to execute
}

func newHarness(vramSize int) (*harness, error) {
	switch vramSize {
	case 0x4000, 0x10000, 0x20000, 0x30000:
	default:
		return nil, fmt.Errorf("unsupported VRAM size %d", vramSize)
	}
	vram := make([]uint8, vramSize)
	cmd := emu.NewCmdEngine(vram, 0)
	cmd.SetScreenMode(5, false)
	return &harness{vram: vram, cmd: cmd}, nil
}

// register installs the harness functions as Lua globals.
func (h *harness) register(L *lua.LState) {
	fns := map[string]lua.LGFunction{
		"write":   h.luaWrite,
		"peek":    h.luaPeek,
		"execute": h.luaExecute,
		"flush":   h.luaFlush,
		"status":  h.luaStatus,
		"borderx": h.luaBorderX,
		"color":   h.luaColor,
		"mode":    h.luaMode,
		"timing":  h.luaTiming,
		"pixel":   h.luaPixel,
		"vram":    h.luaVRAM,
		"busy":    h.luaBusy,
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// checkReg reads a command register argument: 0-14 or the VDP register
// number 32-46.
func checkReg(L *lua.LState, n int) uint8 {
	reg := L.CheckInt(n)
	if reg >= 32 {
		reg -= 32
	}
	if reg < 0 || reg > 14 {
		L.ArgError(n, "register out of range")
	}
	return uint8(reg)
}

// write(reg, value)
func (h *harness) luaWrite(L *lua.LState) int {
	reg := checkReg(L, 1)
	h.cmd.Write(reg, uint8(L.CheckInt(2)), h.clock)
	return 0
}

// peek(reg)
func (h *harness) luaPeek(L *lua.LState) int {
	L.Push(lua.LNumber(h.cmd.Peek(checkReg(L, 1), h.clock)))
	return 1
}

// execute(clock): clock is absolute, in VDP master clock ticks.
func (h *harness) luaExecute(L *lua.LState) int {
	h.clock = uint32(L.CheckInt64(1))
	h.cmd.Execute(h.clock)
	return 0
}

func (h *harness) luaFlush(L *lua.LState) int {
	h.cmd.Flush()
	return 0
}

func (h *harness) luaStatus(L *lua.LState) int {
	L.Push(lua.LNumber(h.cmd.GetStatus()))
	return 1
}

func (h *harness) luaBorderX(L *lua.LState) int {
	L.Push(lua.LNumber(h.cmd.GetBorderX()))
	return 1
}

func (h *harness) luaColor(L *lua.LState) int {
	L.Push(lua.LNumber(h.cmd.GetColor()))
	return 1
}

func (h *harness) luaBusy(L *lua.LState) int {
	L.Push(lua.LBool(h.cmd.Busy()))
	return 1
}

// mode(m [, cmd]): m is the VDP display mode number (5 = SCREEN 5).
func (h *harness) luaMode(L *lua.LState) int {
	h.cmd.SetScreenMode(L.CheckInt(1), L.OptBool(2, false))
	return 0
}

func (h *harness) luaTiming(L *lua.LState) int {
	h.cmd.SetTimingMode(uint8(L.CheckInt(1)))
	return 0
}

func (h *harness) luaPixel(L *lua.LState) int {
	L.Push(lua.LNumber(h.cmd.Pixel(L.CheckInt(1), L.CheckInt(2))))
	return 1
}

// vram(addr [, value]) reads or writes one byte.
func (h *harness) luaVRAM(L *lua.LState) int {
	addr := L.CheckInt(1)
	if addr < 0 || addr >= len(h.vram) {
		L.ArgError(1, "address out of range")
	}
	if L.GetTop() >= 2 {
		h.vram[addr] = uint8(L.CheckInt(2))
		return 0
	}
	L.Push(lua.LNumber(h.vram[addr]))
	return 1
}
