package config

import "sort"

func diffEvent(old, new Table) Event {
	var changedKeys []string

	for k, ov := range old {
		nv, ok := new[k]
		if !ok || !Equal(ov, nv) {
			changedKeys = append(changedKeys, k)
		}
	}
	for k := range new {
		if _, ok := old[k]; !ok {
			changedKeys = append(changedKeys, k)
		}
	}
	sort.Strings(changedKeys)

	return Event{
		ChangedKeys: changedKeys,
		OldDocument: old,
		NewDocument: new,
	}
}
