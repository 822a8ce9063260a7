package storage

// Predefined bucket and object ACLs.
const (
	// ACLAuthenticatedRead: owners get OWNER access, allAuthenticatedUsers
	// get READER access.
	ACLAuthenticatedRead = "authenticatedRead"

	// ACLOwnerFullControl: object owner gets OWNER access, project team
	// owners get OWNER access.
	ACLOwnerFullControl = "bucketOwnerFullControl"

	// ACLOwnerRead: object owner gets OWNER access, project team owners get
	// READER access.
	ACLOwnerRead = "bucketOwnerRead"

	// ACLPrivate: owners get OWNER access.
	ACLPrivate = "private"

	// ACLProjectPrivate: project team members get access according to their
	// roles.
	ACLProjectPrivate = "projectPrivate"

	// ACLPublicRead: owners get OWNER access, allUsers get READER access.
	ACLPublicRead = "publicRead"

	// ACLPublicReadWrite: owners get OWNER access, allUsers get WRITER
	// access. Buckets only.
	ACLPublicReadWrite = "publicReadWrite"
)

// Projections select which resource properties a response includes.
const (
	// ProjectionFull includes all properties.
	ProjectionFull = "full"

	// ProjectionNoACL omits the acl property.
	ProjectionNoACL = "noAcl"
)

// Storage classes.
const (
	// StorageStandard: high availability, low latency. For frequently
	// accessed data.
	StorageStandard = "STANDARD"

	// StorageNearline: lower cost, slightly higher latency. For data
	// accessed less than once a month.
	StorageNearline = "NEARLINE"

	// StorageDurableReducedAvailability: lower availability and cost per GB.
	StorageDurableReducedAvailability = "DURABLE_REDUCED_AVAILABILITY"
)
