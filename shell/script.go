package shell

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("reversi_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// Exec runs one shell command line and returns its output, or a string
// starting with ERROR.
func Exec(L *lua.LState) int {
	line := L.ToString(1)
	sc := getShell(L)
	cmd, err := extractFields(line)
	if err == nil && (cmd.cmd == "script" || cmd.cmd == "exit") {
		err = errors.New(cmd.cmd + " is not allowed inside a script")
	}
	var r *Response
	if err == nil {
		r, err = sc.standardModeSwitch(line)
	}
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-executing-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	if r == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(r.message))
	// return number of results pushed to stack.
	return 1
}

// State pushes a table describing the current game, or nil if there is none.
func State(L *lua.LState) int {
	sc := getShell(L)
	st, err := sc.state()
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	bts, err := json.Marshal(st)
	if err != nil {
		L.RaiseError("marshalling state: %v", err)
		return 0
	}
	val, err := luajson.Decode(L, bts)
	if err != nil {
		L.RaiseError("decoding state: %v", err)
		return 0
	}
	L.Push(val)
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("reversi_shell", lsc)
	L.SetGlobal("reversi_exec", L.NewFunction(Exec))
	L.SetGlobal("reversi_state", L.NewFunction(State))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
