package checklist

// SanitizeWeeklyState decodes weekly boss state, upgrading legacy flat maps.
//
// Decoding is a tagged union tried in order: the current versioned/nested schema,
// then the legacy flat BossID -> entry map, then the empty state. The result is
// always pruned, so running it on its own output is a no-op.
func SanitizeWeeklyState(value any) WeeklyBossState {
	obj, ok := asObject(generic(value))
	if !ok {
		return EmptyWeeklyState()
	}
	if state, ok := decodeCurrentWeekly(obj); ok {
		return state
	}
	if state, ok := decodeLegacyWeekly(obj); ok {
		return state
	}
	return EmptyWeeklyState()
}

func decodeCurrentWeekly(obj map[string]any) (WeeklyBossState, bool) {
	version, ok := number(obj["version"])
	if !ok || version < CurrentWeeklyVersion {
		return WeeklyBossState{}, false
	}
	worlds, ok := asObject(obj["worlds"])
	if !ok {
		return WeeklyBossState{}, false
	}

	state := EmptyWeeklyState()
	for worldID, rawChars := range worlds {
		chars, ok := asObject(rawChars)
		if !ok || worldID == "" {
			continue
		}
		cm := CharacterMap{}
		for charID, rawBosses := range chars {
			if charID == "" {
				continue
			}
			if bosses := SanitizeBossEntries(rawBosses); len(bosses) > 0 {
				cm[charID] = bosses
			}
		}
		if len(cm) > 0 {
			state.Worlds[worldID] = cm
		}
	}
	return state, true
}

func decodeLegacyWeekly(obj map[string]any) (WeeklyBossState, bool) {
	legacy := SanitizeBossEntries(obj)
	if len(legacy) == 0 {
		return WeeklyBossState{}, false
	}
	state := EmptyWeeklyState()
	state.Worlds[UnassignedWorld] = CharacterMap{UnassignedCharacter: legacy}
	return state, true
}
