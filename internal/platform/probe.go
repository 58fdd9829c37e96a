// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/spf13/afero"
)

type (
	// Probe autodetects the family and member of a system.
	Probe interface {
		Detect() (Family, Member)
	}

	// LinuxProbe identifies Linux distributions from release files.
	LinuxProbe struct {
		FS afero.Fs
		// Root prefixes every release file path. Sandboxed runs point it
		// at the host's filesystem.
		Root string
	}

	// BSDProbe maps a BSD-like GOOS to its member.
	BSDProbe struct {
		GOOS string
	}

	// WindowsProbe identifies Windows releases from their version numbers.
	WindowsProbe struct {
		// Version returns the OS version; ok is false when it is unknown.
		Version func() (major, minor uint32, workstation, ok bool)
	}

	// StaticProbe reports fixed values.
	StaticProbe struct {
		Family Family
		Member Member
	}
)

// NativeProbe returns the probe for goos. Unknown systems are treated as
// Linux.
func NativeProbe(fs afero.Fs, goos string, getenv func(string) string) Probe {
	switch goos {
	case "windows":
		return WindowsProbe{Version: windowsVersion}
	case "openbsd", "freebsd", "netbsd", "dragonfly", "darwin":
		return BSDProbe{GOOS: goos}
	default:
		return LinuxProbe{FS: fs, Root: HostRoot(DetectSandbox(fs, getenv))}
	}
}

// Detect implements Probe.
func (p StaticProbe) Detect() (Family, Member) {
	return p.Family, p.Member
}

// Detect implements Probe.
func (p BSDProbe) Detect() (Family, Member) {
	switch p.GOOS {
	case "openbsd":
		return FamilyBSD, MemberOpenBSD
	case "freebsd", "dragonfly":
		return FamilyBSD, MemberFreeBSD
	case "netbsd":
		return FamilyBSD, MemberNetBSD
	case "darwin":
		return FamilyBSD, MemberDarwin
	default:
		return FamilyBSD, MemberUnknown
	}
}

// Detect implements Probe.
func (p WindowsProbe) Detect() (Family, Member) {
	if p.Version == nil {
		return FamilyWindows, MemberUnknown
	}
	major, minor, workstation, ok := p.Version()
	if !ok {
		return FamilyWindows, MemberUnknown
	}
	return FamilyWindows, WindowsMember(major, minor, workstation)
}

// WindowsMember maps NT version numbers to a member.
func WindowsMember(major, minor uint32, workstation bool) Member {
	switch major {
	case 5:
		switch {
		case minor == 0:
			return MemberWindows2000
		case minor == 1, minor == 2 && workstation:
			return MemberWindowsXP
		default:
			return MemberWindowsServer2003
		}
	case 6:
		if workstation {
			switch minor {
			case 0:
				return MemberWindowsVista
			case 1:
				return MemberWindows7
			default:
				return MemberWindows8
			}
		}
		if minor <= 1 {
			return MemberWindowsServer2008
		}
		return MemberWindowsServer2012
	case 10:
		if workstation {
			return MemberWindows10
		}
		return MemberWindowsServer2016
	default:
		return MemberUnknown
	}
}

// Detect implements Probe. lsb-release is consulted first, then os-release,
// then distribution marker files.
func (p LinuxProbe) Detect() (Family, Member) {
	if m := p.fromLSBRelease(); m != MemberUnknown {
		return FamilyLinux, m
	}
	if m := p.fromOSRelease(); m != MemberUnknown {
		return FamilyLinux, m
	}

	markers := []struct {
		path   string
		member Member
	}{
		{"/etc/debian_version", MemberDebian},
		{"/etc/fedora-release", MemberFedora},
		{"/etc/redhat-release", MemberRedHat},
		{"/etc/arch-release", MemberArch},
	}
	for _, marker := range markers {
		if ok, _ := afero.Exists(p.FS, p.Root+marker.path); ok {
			return FamilyLinux, marker.member
		}
	}
	return FamilyLinux, MemberUnknown
}

func (p LinuxProbe) fromLSBRelease() Member {
	fields := p.readKeyValues("/etc/lsb-release")
	return memberFromID(fields["DISTRIB_ID"])
}

func (p LinuxProbe) fromOSRelease() Member {
	fields := p.readKeyValues("/etc/os-release")
	if m := memberFromID(fields["ID"]); m != MemberUnknown {
		return m
	}
	for _, like := range strings.Fields(fields["ID_LIKE"]) {
		if m := memberFromID(like); m != MemberUnknown {
			return m
		}
	}
	return MemberUnknown
}

func (p LinuxProbe) readKeyValues(path string) map[string]string {
	data, err := afero.ReadFile(p.FS, p.Root+path)
	if err != nil {
		return nil
	}
	out := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}
	return out
}

func memberFromID(id string) Member {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "ubuntu":
		return MemberUbuntu
	case "debian":
		return MemberDebian
	case "fedora":
		return MemberFedora
	case "rhel", "redhat", "centos", "rocky", "almalinux":
		return MemberRedHat
	case "arch", "archlinux":
		return MemberArch
	default:
		return MemberUnknown
	}
}
