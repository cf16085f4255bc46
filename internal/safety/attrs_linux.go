//go:build linux

package safety

import (
	"time"

	"golang.org/x/sys/unix"
)

func platformSnapshot(path string, attrs *attributes) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return
	}
	attrs.uid, attrs.gid, attrs.owned = int(st.Uid), int(st.Gid), true
	attrs.atime = time.Unix(st.Atim.Unix())
}
