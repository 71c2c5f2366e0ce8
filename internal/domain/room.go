package domain

import "strings"

// RoomID names a fan-out group: a durable chat group or an ephemeral call room.
type RoomID string

type GroupID string

const callRoomPrefix = "video_"

// GroupRoom is the room every live member of a group is joined to.
func GroupRoom(g GroupID) RoomID { return RoomID(g) }

// CallRoom is the mesh call room of a group.
func CallRoom(g GroupID) RoomID { return RoomID(callRoomPrefix + string(g)) }

func (r RoomID) IsCall() bool { return strings.HasPrefix(string(r), callRoomPrefix) }

// NormalizeCallRoom accepts either a bare group id or a full call room id.
func NormalizeCallRoom(raw string) RoomID {
	r := RoomID(raw)
	if r.IsCall() {
		return r
	}
	return CallRoom(GroupID(raw))
}
