package eventlog

import "fmt"

// Kind is the class of an operations event.
type Kind int

const (
	KindDev Kind = iota + 1
	KindError
	KindWarn
	KindCustom
	KindGuildJoin
	KindGuildLeave
)

var kindNames = map[Kind]string{
	KindDev:        "dev",
	KindError:      "error",
	KindWarn:       "warn",
	KindCustom:     "custom",
	KindGuildJoin:  "guildJoin",
	KindGuildLeave: "guildLeave",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a kind name. Unknown names are an error.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("eventlog: unknown kind %q", s)
}

// Subtype classifies error events. The zero value means unclassified.
type Subtype int

const (
	SubtypeNone Subtype = iota
	SubtypeDM
	SubtypeFetch
	SubtypeSend
	SubtypeEdit
	SubtypeReact
	SubtypeTyping
	SubtypePresence
	SubtypeDB
	SubtypeUncaught
	SubtypeUnhandled
	SubtypeWarning
	SubtypeAPI
	SubtypeShardFetch
)

var subtypeNames = map[Subtype]string{
	SubtypeDM:         "dm",
	SubtypeFetch:      "fetch",
	SubtypeSend:       "send",
	SubtypeEdit:       "edit",
	SubtypeReact:      "react",
	SubtypeTyping:     "typing",
	SubtypePresence:   "presence",
	SubtypeDB:         "db",
	SubtypeUncaught:   "uncaught",
	SubtypeUnhandled:  "unhandled",
	SubtypeWarning:    "warning",
	SubtypeAPI:        "api",
	SubtypeShardFetch: "shardFetch",
}

func (s Subtype) String() string {
	if s == SubtypeNone {
		return ""
	}
	if name, ok := subtypeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Subtype(%d)", int(s))
}

// ParseSubtype resolves a subtype name. The empty string is SubtypeNone.
func ParseSubtype(s string) (Subtype, error) {
	if s == "" {
		return SubtypeNone, nil
	}
	for st, name := range subtypeNames {
		if name == s {
			return st, nil
		}
	}
	return SubtypeNone, fmt.Errorf("eventlog: unknown error subtype %q", s)
}

// Title is the notification title for errors of this subtype.
func (s Subtype) Title() string {
	switch s {
	case SubtypeDM:
		return ":skull_crossbones:  Discord - create DM"
	case SubtypeFetch:
		return ":no_pedestrians:  Discord - fetch user"
	case SubtypeSend:
		return ":postbox:  Discord - send"
	case SubtypeEdit:
		return ":crayon:  Discord - edit message"
	case SubtypeReact:
		return ":anger:  Discord - add reaction"
	case SubtypeTyping:
		return ":keyboard:  Discord - typing"
	case SubtypePresence:
		return ":loudspeaker:  Discord - update status"
	case SubtypeDB:
		return ":outbox_tray:  Database Error"
	case SubtypeUncaught:
		return ":japanese_goblin:  Recovered Panic"
	case SubtypeUnhandled:
		return ":japanese_ogre:  Unhandled Error"
	case SubtypeWarning:
		return ":exclamation:  Process Warning"
	case SubtypeAPI:
		return ":boom:  External API Error"
	case SubtypeShardFetch:
		return ":pager:  Discord - shard fetch"
	default:
		return ""
	}
}
