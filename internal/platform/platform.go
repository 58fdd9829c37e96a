// SPDX-License-Identifier: MPL-2.0

package platform

import "golang.org/x/exp/slices"

// Families.
const (
	FamilyWindows Family = "windows"
	FamilyLinux   Family = "linux"
	FamilyBSD     Family = "bsd"
)

// Members.
const (
	MemberUnknown           Member = "unknown"
	MemberWindows2000       Member = "win2000"
	MemberWindowsXP         Member = "winxp"
	MemberWindowsServer2003 Member = "winserver2003"
	MemberWindowsVista      Member = "winvista"
	MemberWindowsServer2008 Member = "winserver2008"
	MemberWindows7          Member = "win7"
	MemberWindows8          Member = "win8"
	MemberWindowsServer2012 Member = "winserver2012"
	MemberWindows10         Member = "win10"
	MemberWindowsServer2016 Member = "winserver2016"
	MemberRedHat            Member = "redhat"
	MemberFedora            Member = "fedora"
	MemberDebian            Member = "debian"
	MemberUbuntu            Member = "ubuntu"
	MemberArch              Member = "arch"
	MemberOpenBSD           Member = "openbsd"
	MemberFreeBSD           Member = "freebsd"
	MemberNetBSD            Member = "netbsd"
	MemberDarwin            Member = "darwin"
)

// Linux classes.
const (
	ClassInvalid LinuxClass = "invalid"
	ClassRedHat  LinuxClass = "redhat"
	ClassDebian  LinuxClass = "debian"
	ClassArch    LinuxClass = "arch"
)

type (
	// Family is the broad operating system type.
	Family string

	// Member is the distribution or generation within a family.
	Member string

	// LinuxClass groups Linux distributions sharing a filesystem layout.
	LinuxClass string

	// Descriptor is the effective platform after overrides.
	Descriptor struct {
		Family           Family
		Member           Member
		ArchitectureBits int
		// LinuxClass is only meaningful when Family is FamilyLinux.
		LinuxClass LinuxClass
	}
)

var familyMembers = map[Family][]Member{
	FamilyWindows: {
		MemberWindows2000, MemberWindowsXP, MemberWindowsServer2003, MemberWindowsVista,
		MemberWindowsServer2008, MemberWindows7, MemberWindows8, MemberWindowsServer2012,
		MemberWindows10, MemberWindowsServer2016,
	},
	FamilyLinux: {MemberRedHat, MemberFedora, MemberDebian, MemberUbuntu, MemberArch},
	FamilyBSD:   {MemberOpenBSD, MemberFreeBSD, MemberNetBSD, MemberDarwin},
}

// Families returns every family in display order.
func Families() []Family {
	return []Family{FamilyWindows, FamilyLinux, FamilyBSD}
}

// Members returns the known members of f.
func Members(f Family) []Member {
	return slices.Clone(familyMembers[f])
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	_, ok := familyMembers[f]
	return ok
}

// ClassOf returns the Linux class of member.
func ClassOf(m Member) LinuxClass {
	switch m {
	case MemberUbuntu, MemberDebian:
		return ClassDebian
	case MemberRedHat, MemberFedora:
		return ClassRedHat
	case MemberArch:
		return ClassArch
	default:
		return ClassInvalid
	}
}

// IsLinux reports whether d describes a Linux system.
func (d Descriptor) IsLinux() bool {
	return d.Family == FamilyLinux
}

// Is64Bit reports whether d has 64-bit pointers.
func (d Descriptor) Is64Bit() bool {
	return d.ArchitectureBits == 64
}

// MultiarchTriplet returns the Debian multiarch directory name for goarch,
// or "" when there is none.
func MultiarchTriplet(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64-linux-gnu"
	case "386":
		return "i386-linux-gnu"
	case "arm64":
		return "aarch64-linux-gnu"
	case "arm":
		return "arm-linux-gnueabihf"
	case "ppc64le":
		return "powerpc64le-linux-gnu"
	case "s390x":
		return "s390x-linux-gnu"
	case "riscv64":
		return "riscv64-linux-gnu"
	default:
		return ""
	}
}
