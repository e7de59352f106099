package command

// Arg is a single command flag, optionally carrying a value.
type Arg struct {
	Key      string
	Value    string
	HasValue bool
}

// ArgList is an ordered, key-unique list of command flags.
//
// Keys are stored without the leading dash. Insertion order is preserved and
// becomes the order of the materialized arguments, which matters because
// ffmpeg applies input options to the next -i and output options to the
// next output target.
type ArgList struct {
	args []Arg
}

// NewArgList creates an empty list.
func NewArgList() *ArgList {
	return &ArgList{}
}

func (l *ArgList) index(key string) int {
	for i := range l.args {
		if l.args[i].Key == key {
			return i
		}
	}
	return -1
}

// Add appends a flag without a value. Returns false if key already exists.
func (l *ArgList) Add(key string) bool {
	if l.index(key) >= 0 {
		return false
	}
	l.args = append(l.args, Arg{Key: key})
	return true
}

// AddValue appends a flag with a value. Returns false if key already exists.
func (l *ArgList) AddValue(key, value string) bool {
	if l.index(key) >= 0 {
		return false
	}
	l.args = append(l.args, Arg{Key: key, Value: value, HasValue: true})
	return true
}

// Replace updates the value of an existing key in place. When the key is
// missing it is appended if addIfAbsent is set; otherwise Replace returns false.
func (l *ArgList) Replace(key, value string, addIfAbsent bool) bool {
	if i := l.index(key); i >= 0 {
		l.args[i].Value = value
		l.args[i].HasValue = true
		return true
	}
	if !addIfAbsent {
		return false
	}
	l.args = append(l.args, Arg{Key: key, Value: value, HasValue: true})
	return true
}

// ReplaceKey substitutes oldKey with newKey at the same position and drops
// the value. Fails when oldKey is missing or newKey is used by another entry.
func (l *ArgList) ReplaceKey(oldKey, newKey string) bool {
	i, ok := l.rekey(oldKey, newKey)
	if !ok {
		return false
	}
	l.args[i].Value = ""
	l.args[i].HasValue = false
	return true
}

// ReplaceKeyValue substitutes oldKey with newKey at the same position and
// sets its value.
func (l *ArgList) ReplaceKeyValue(oldKey, newKey, value string) bool {
	i, ok := l.rekey(oldKey, newKey)
	if !ok {
		return false
	}
	l.args[i].Value = value
	l.args[i].HasValue = true
	return true
}

func (l *ArgList) rekey(oldKey, newKey string) (int, bool) {
	i := l.index(oldKey)
	if i < 0 {
		return -1, false
	}
	if j := l.index(newKey); j >= 0 && j != i {
		return -1, false
	}
	l.args[i].Key = newKey
	return i, true
}

// Remove deletes key, keeping the order of the remaining entries.
func (l *ArgList) Remove(key string) bool {
	i := l.index(key)
	if i < 0 {
		return false
	}
	l.args = append(l.args[:i], l.args[i+1:]...)
	return true
}

// Contains reports whether key is present.
func (l *ArgList) Contains(key string) bool {
	return l.index(key) >= 0
}

// Value returns the value stored for key. The boolean is false when the key
// is missing or was added without a value.
func (l *ArgList) Value(key string) (string, bool) {
	i := l.index(key)
	if i < 0 || !l.args[i].HasValue {
		return "", false
	}
	return l.args[i].Value, true
}

// Len returns the number of entries.
func (l *ArgList) Len() int {
	return len(l.args)
}

// Keys returns the keys in order.
func (l *ArgList) Keys() []string {
	keys := make([]string, len(l.args))
	for i, a := range l.args {
		keys[i] = a.Key
	}
	return keys
}

// Clone returns an independent copy with identical order and values.
func (l *ArgList) Clone() *ArgList {
	clone := &ArgList{args: make([]Arg, len(l.args))}
	copy(clone.args, l.args)
	return clone
}

// CopyTo writes every entry into dst in order. Keys already present in dst
// are overwritten in place; others are appended.
func (l *ArgList) CopyTo(dst *ArgList) {
	for _, a := range l.args {
		if i := dst.index(a.Key); i >= 0 {
			dst.args[i] = a
			continue
		}
		dst.args = append(dst.args, a)
	}
}

// Args materializes the list as command-line arguments.
func (l *ArgList) Args() []string {
	out := make([]string, 0, len(l.args)*2)
	for _, a := range l.args {
		out = append(out, "-"+a.Key)
		if a.HasValue {
			out = append(out, a.Value)
		}
	}
	return out
}
