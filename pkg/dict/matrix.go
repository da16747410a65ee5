package dict

// 内置的 Matrix client-server r0 压缩字典。
//
// 注意：每一代发布后即冻结，与线上对端位兼容；新增条目只能追加新的一代。

// DefaultKeyTable 返回内置的键字典
func DefaultKeyTable() *KeyTable {
	return NewKeyTable(
		KeyGeneration{
			Version: 1,
			Entries: []KeyEntry{
				{Name: "event_id", Code: 1},
				{Name: "type", Code: 2},
				{Name: "content", Code: 3},
				{Name: "sender", Code: 4},
				{Name: "room_id", Code: 5},
				{Name: "state_key", Code: 6},
				{Name: "origin_server_ts", Code: 7},
				{Name: "unsigned", Code: 8},
				{Name: "body", Code: 9},
				{Name: "msgtype", Code: 10},
				{Name: "membership", Code: 11},
				{Name: "avatar_url", Code: 12},
				{Name: "displayname", Code: 13},
				{Name: "errcode", Code: 14},
				{Name: "error", Code: 15},
				{Name: "access_token", Code: 16},
				{Name: "user_id", Code: 17},
				{Name: "device_id", Code: 18},
				{Name: "events", Code: 19},
				{Name: "chunk", Code: 20},
				{Name: "start", Code: 21},
				{Name: "end", Code: 22},
				{Name: "limit", Code: 23},
				{Name: "prev_batch", Code: 24},
				{Name: "next_batch", Code: 25},
			},
		},
		KeyGeneration{
			Version: 2,
			Entries: []KeyEntry{
				{Name: "m.relates_to", Code: 26},
				{Name: "rel_type", Code: 27},
				{Name: "event_ids", Code: 28},
				{Name: "reason", Code: 29},
				{Name: "receipts", Code: 30},
			},
		},
	)
}

// DefaultPathTable 返回内置的路径字典
func DefaultPathTable() *PathTable {
	return NewPathTable(
		PathGeneration{
			Version: 1,
			Entries: []PathEntry{
				{Template: "/_matrix/client/r0/login", Symbol: "L"},
				{Template: "/_matrix/client/r0/sync", Symbol: "S"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/send/{eventType}/{txnId}", Symbol: "R"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/state/{eventType}/{stateKey}", Symbol: "V"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/join", Symbol: "K"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/messages", Symbol: "M"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/event/{eventId}", Symbol: "E"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/typing/{userId}", Symbol: "T"},
				{Template: "/_matrix/client/r0/profile/{userId}", Symbol: "P"},
			},
		},
		PathGeneration{
			Version: 2,
			Entries: []PathEntry{
				{Template: "/_matrix/client/r0/rooms/{roomId}/receipt/{receiptType}/{eventId}", Symbol: "A"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/invite", Symbol: "I"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/leave", Symbol: "X"},
				{Template: "/_matrix/client/r0/rooms/{roomId}/forget", Symbol: "F"},
				{Template: "/_matrix/client/r0/createRoom", Symbol: "C"},
			},
		},
	)
}
