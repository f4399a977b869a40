package license

const selectColumns = `
    license_id,
    name,
    mobile,
    email,
    country,
    hwid,
    license_key,
    expiry,
    status,
    created
`

const listLicensesSQL = `
SELECT` + selectColumns + `
FROM license
ORDER BY seq
`

const getLicenseSQL = `
SELECT` + selectColumns + `
FROM license
WHERE license_id = ?
`

const getLicenseByKeySQL = `
SELECT` + selectColumns + `
FROM license
WHERE license_key = ?
`

const listExpiringSQL = `
SELECT` + selectColumns + `
FROM license
WHERE expiry < ?
ORDER BY expiry DESC, seq
`

// upsertLicenseSQL replaces every mutable column but keeps seq, so a record
// keeps its position in ListAll.
const upsertLicenseSQL = `
INSERT INTO license (
    license_id,
    name,
    mobile,
    email,
    country,
    hwid,
    license_key,
    expiry,
    status,
    created
) VALUES (
    :license_id,
    :name,
    :mobile,
    :email,
    :country,
    :hwid,
    :license_key,
    :expiry,
    :status,
    :created
)
ON CONFLICT (license_id) DO UPDATE SET
    name = excluded.name,
    mobile = excluded.mobile,
    email = excluded.email,
    country = excluded.country,
    hwid = excluded.hwid,
    license_key = excluded.license_key,
    expiry = excluded.expiry,
    status = excluded.status,
    created = excluded.created
`

const deleteLicenseSQL = `
DELETE FROM license
WHERE license_id = ?
`
