package cache

import (
	"os"

	"github.com/glorpus-work/osploader/pkg/fsutil"
)

const (
	// HostPrefix starts the name of every per-host cache directory.
	HostPrefix = "osp-"
	// SearchDir is the reserved directory holding search metadata records.
	SearchDir = "Search"
	// LocalHost names the host directory for sources without a host.
	LocalHost = "local_machine"

	// migrationWorkers bounds parallel directory copies during SetRoot.
	migrationWorkers = 4
)

// CacheDirPerm is the permission mode for cache directories.
const CacheDirPerm os.FileMode = fsutil.DirModeDefault
