// Package schema fixes the exportable surface of the VX Ace database: which
// attribute of which table appears under which StringScripts marker, and the
// index→marker vocabulary tables for RPG::System::Terms. Export and import
// both read from here so the two sides can never drift apart.
package schema

import "sort"

// Field maps one object attribute to its StringScripts marker. Multiline
// fields are newline-escaped on export and unescaped on import; a multiline
// field with an empty original is omitted from the output.
type Field struct {
	Marker    string
	Attr      string
	Multiline bool
}

// Table describes one database array file (Actors.rvdata2 etc).
type Table struct {
	Name   string // folder and txt base name under StringScripts/Database
	File   string // rvdata2 file name under Data/
	Fields []Field
}

var nameDesc = []Field{
	{Marker: "Name", Attr: "name"},
	{Marker: "Description", Attr: "description", Multiline: true},
}

// Tables lists every exported database array in output order.
var Tables = []Table{
	{Name: "Actors", File: "Actors.rvdata2", Fields: []Field{
		{Marker: "Name", Attr: "name"},
		{Marker: "Nickname", Attr: "nickname"},
		{Marker: "Description", Attr: "description", Multiline: true},
	}},
	{Name: "Classes", File: "Classes.rvdata2", Fields: nameDesc},
	{Name: "Skills", File: "Skills.rvdata2", Fields: []Field{
		{Marker: "Name", Attr: "name"},
		{Marker: "Description", Attr: "description", Multiline: true},
		{Marker: "Message1", Attr: "message1"},
		{Marker: "Message2", Attr: "message2"},
	}},
	{Name: "Items", File: "Items.rvdata2", Fields: nameDesc},
	{Name: "Weapons", File: "Weapons.rvdata2", Fields: nameDesc},
	{Name: "Armors", File: "Armors.rvdata2", Fields: nameDesc},
	{Name: "Enemies", File: "Enemies.rvdata2", Fields: nameDesc},
	{Name: "States", File: "States.rvdata2", Fields: []Field{
		{Marker: "Name", Attr: "name"},
		{Marker: "Description", Attr: "description", Multiline: true},
		{Marker: "Message1", Attr: "message1"},
		{Marker: "Message2", Attr: "message2"},
		{Marker: "Message3", Attr: "message3"},
		{Marker: "Message4", Attr: "message4"},
	}},
}

// VocabGroup is one index→marker table over an RPG::System::Terms array.
type VocabGroup struct {
	Attr    string // terms attribute holding the array
	Markers map[int]string
}

// VocabGroups covers terms.basic, terms.params, terms.etypes and
// terms.commands. Marker names follow the RM200x vocab style so translated
// vocab files stay uniform across engines. Indices without a marker (11 in
// commands) are editor placeholders and are not exported.
var VocabGroups = []VocabGroup{
	{Attr: "basic", Markers: map[int]string{
		0: "Level", 1: "LevelShort",
		2: "HP", 3: "HPShort",
		4: "MP", 5: "MPShort",
		6: "TP", 7: "TPShort",
	}},
	{Attr: "params", Markers: map[int]string{
		0: "MaxHP", 1: "MaxMP",
		2: "Offense", 3: "Defense",
		4: "Mind", 5: "MagicDefense",
		6: "Agility", 7: "Luck",
	}},
	{Attr: "etypes", Markers: map[int]string{
		0: "Arms", 1: "Shield", 2: "Helmet", 3: "Armor", 4: "Other",
	}},
	{Attr: "commands", Markers: map[int]string{
		0: "Fight", 1: "Escape", 2: "Attack", 3: "Defend",
		4: "Item", 5: "Skill", 6: "Equip", 7: "Status",
		8: "Formation", 9: "Save", 10: "EndGame",
		12: "WeaponCategory", 13: "ArmorCategory", 14: "KeyItem",
		15: "Equip2", 16: "Optimize", 17: "Clear",
		18: "NewGame", 19: "Continue", 20: "Quit",
		21: "ToTitle", 22: "Cancel",
	}},
}

// SortedIndices returns the marker indices of a group in ascending order.
func (g VocabGroup) SortedIndices() []int {
	idx := make([]int, 0, len(g.Markers))
	for i := range g.Markers {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
