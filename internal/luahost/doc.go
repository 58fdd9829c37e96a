// SPDX-License-Identifier: MPL-2.0

// Package luahost runs Lua controllers in-process on gopher-lua.
//
// Every registered provider is exposed as Discover.<Identifier>, taking a
// table of arguments and returning a result table, or nil when an optional
// lookup found nothing. Discover.HelpMode and Discover.ControllerLocation
// describe the run, and the Utility table offers MakeDirectory and Call so
// scripts can prepare build trees without shelling out themselves.
//
// File organization:
//   - host.go: state setup and script execution
//   - convert.go: argument and result conversion
//   - utility.go: the Utility table
package luahost
