package fdexpect

// Descriptor is anything that exposes a raw file descriptor, *os.File being the most common example.
// The Session never closes it, that remains the responsibility of whoever opened it.
type Descriptor interface {
	Fd() uintptr
}

// FD adapts a raw descriptor number, for instance one obtained from a syscall, to a Descriptor
type FD int

func (fd FD) Fd() uintptr {
	return uintptr(fd)
}
