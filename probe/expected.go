package probe

import "io/fs"

// Expected runtime state of an untampered installation. The probe only
// compares observed state against this table; it never enforces anything.
const (
	// ExpectedCreatorClass is the concrete class backing the package-info
	// creator singleton.
	ExpectedCreatorClass = "android.content.pm.PackageInfo$1"

	// ExpectedCreatorPrefix is the owning-class prefix every legitimate
	// creator implementation carries.
	ExpectedCreatorPrefix = "android.content.pm.PackageInfo$"

	// ExpectedPMProxyClass is the stub proxy backing the package-manager
	// service handle.
	ExpectedPMProxyClass = "android.content.pm.IPackageManager$Stub$Proxy"

	// ExpectedComponentFactory is the default app component factory.
	ExpectedComponentFactory = "androidx.core.app.CoreComponentFactory"

	// ExpectedPathPrefix is the installation root every package path must
	// start with.
	ExpectedPathPrefix = "/data/app/"

	// ExpectedPathSuffix is the base artifact every package path must end
	// with.
	ExpectedPathSuffix = "/base.apk"

	// ExpectedOwnerUID is the system identity owning installed packages.
	ExpectedOwnerUID = 1000
)

// ExpectedFileMode is the read-only mode installed packages carry.
const ExpectedFileMode fs.FileMode = 0o644
