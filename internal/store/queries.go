package store

// SQL statements for PostgresStore. Kept here so postgres.go stays readable.

const queryAppendSnapshot = `
INSERT INTO snapshots (tenant_id, seq, records, captured_at)
SELECT @tenant_id,
       COALESCE(MAX(seq) + 1, 0),
       @records,
       @captured_at
FROM snapshots
WHERE tenant_id = @tenant_id
RETURNING seq
`

const queryGetSnapshot = `
SELECT records, captured_at
FROM snapshots
WHERE tenant_id = $1 AND seq = $2
`

const queryListSequences = `
SELECT seq
FROM snapshots
WHERE tenant_id = $1
ORDER BY seq ASC
`

const queryPruneSnapshots = `
DELETE FROM snapshots
WHERE (tenant_id, seq) IN (
    SELECT tenant_id, seq
    FROM (
        SELECT tenant_id,
               seq,
               ROW_NUMBER() OVER (PARTITION BY tenant_id ORDER BY seq DESC) AS rn
        FROM snapshots
    ) ranked
    WHERE rn > $1
)
`
