package logger

// Every log message is given a message ID. Errors carry the class of failure
// (lexing vs. parsing) so that callers can report it without inspecting the
// message text. Warnings each get their own ID so that individual kinds of
// warnings can be turned off.
type MsgID = uint8

const (
	MsgID_None MsgID = iota

	// Errors
	MsgID_LexError
	MsgID_SyntaxError

	// Warnings
	MsgID_JS_AssignInCondition
	MsgID_JS_DebuggerStatement
	MsgID_JS_DuplicateDeclaration
	MsgID_JS_NewArrayLength
	MsgID_JS_UnreachableCode
	MsgID_JS_UseBeforeDeclaration
	MsgID_JS_UnverifiedOutput

	MsgID_END // Keep this at the end (used only for tests)
)

func StringToMsgIDs(str string, logLevel LogLevel, overrides map[MsgID]LogLevel) {
	switch str {
	case "lex-error":
		overrides[MsgID_LexError] = logLevel
	case "syntax-error":
		overrides[MsgID_SyntaxError] = logLevel

	case "assign-in-condition":
		overrides[MsgID_JS_AssignInCondition] = logLevel
	case "debugger-statement":
		overrides[MsgID_JS_DebuggerStatement] = logLevel
	case "duplicate-declaration":
		overrides[MsgID_JS_DuplicateDeclaration] = logLevel
	case "new-array-length":
		overrides[MsgID_JS_NewArrayLength] = logLevel
	case "unreachable-code":
		overrides[MsgID_JS_UnreachableCode] = logLevel
	case "use-before-declaration":
		overrides[MsgID_JS_UseBeforeDeclaration] = logLevel
	case "unverified-output":
		overrides[MsgID_JS_UnverifiedOutput] = logLevel

	default:
		// Ignore invalid entries since this message id may have
		// been renamed/removed since when this code was written
	}
}

func MsgIDToString(id MsgID) string {
	switch id {
	case MsgID_LexError:
		return "lex-error"
	case MsgID_SyntaxError:
		return "syntax-error"

	case MsgID_JS_AssignInCondition:
		return "assign-in-condition"
	case MsgID_JS_DebuggerStatement:
		return "debugger-statement"
	case MsgID_JS_DuplicateDeclaration:
		return "duplicate-declaration"
	case MsgID_JS_NewArrayLength:
		return "new-array-length"
	case MsgID_JS_UnreachableCode:
		return "unreachable-code"
	case MsgID_JS_UseBeforeDeclaration:
		return "use-before-declaration"
	case MsgID_JS_UnverifiedOutput:
		return "unverified-output"
	}

	return ""
}

// Drops messages whose ID has been overridden to a level that hides them.
// Errors are never filtered since that would let a broken file "succeed".
func FilterLog(log Log, overrides map[MsgID]LogLevel) Log {
	if len(overrides) == 0 {
		return log
	}
	addMsg := log.AddMsg
	log.AddMsg = func(msg Msg) {
		if msg.Kind != Error {
			if level, ok := overrides[msg.ID]; ok && level > LevelWarning {
				return
			}
		}
		addMsg(msg)
	}
	return log
}
