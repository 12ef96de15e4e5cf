package postgres

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/garazh/internal/core"
)

// legacyNamespace seeds the UUIDs derived from identifiers that are not
// UUIDs, such as the numeric ids of older backups.
var legacyNamespace = uuid.MustParse("6f1c2b7e-4d0a-5c3e-9b8f-2a1d7e6c5b40")

// storedUUID returns the UUID an id is stored under. UUIDs map to themselves;
// anything else is derived deterministically per entity kind, so references
// to the same id always land on the same row.
func storedUUID(kind string, id core.ID) uuid.UUID {
	if u, err := uuid.Parse(string(id)); err == nil {
		return u
	}
	return uuid.NewSHA1(legacyNamespace, []byte(kind+":"+string(id)))
}

// lookupUUID parses an id handed to an update or delete. Only UUIDs can
// exist in the tables.
func lookupUUID(id core.ID) (pgtype.UUID, bool) {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgUUID(u), true
}

func pgUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

// fromPgUUID maps NULL and the nil UUID back to a blank id.
func fromPgUUID(u pgtype.UUID) core.ID {
	if !u.Valid || uuid.UUID(u.Bytes) == uuid.Nil {
		return ""
	}
	return core.ID(uuid.UUID(u.Bytes).String())
}

// translate rewrites every identifier and reference in ds to its stored
// UUID. Records without an id get a fresh one.
func translate(ds core.Dataset) core.Dataset {
	out := core.Dataset{
		Customers:    make([]core.Customer, len(ds.Customers)),
		Vehicles:     make([]core.Vehicle, len(ds.Vehicles)),
		Orders:       make([]core.Order, len(ds.Orders)),
		ServiceTypes: append([]string{}, ds.ServiceTypes...),
	}
	for i, c := range ds.Customers {
		c.ID = recordID("customer", c.ID)
		out.Customers[i] = c
	}
	for i, v := range ds.Vehicles {
		v.ID = recordID("vehicle", v.ID)
		v.CustomerID = referenceID("customer", v.CustomerID)
		out.Vehicles[i] = v
	}
	for i, o := range ds.Orders {
		o = o.Clone()
		o.ID = recordID("order", o.ID)
		o.CustomerID = referenceID("customer", o.CustomerID)
		o.VehicleID = referenceID("vehicle", o.VehicleID)
		out.Orders[i] = o
	}
	return out
}

func recordID(kind string, id core.ID) core.ID {
	if id.IsZero() {
		return core.ID(uuid.NewString())
	}
	return core.ID(storedUUID(kind, id).String())
}

// referenceID keeps a blank reference blank.
func referenceID(kind string, id core.ID) core.ID {
	if id.IsZero() {
		return ""
	}
	return core.ID(storedUUID(kind, id).String())
}

// refUUID encodes a reference column; blank becomes the nil UUID.
func refUUID(kind string, id core.ID) pgtype.UUID {
	if id.IsZero() {
		return pgUUID(uuid.Nil)
	}
	return pgUUID(storedUUID(kind, id))
}
