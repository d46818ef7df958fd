package sqlinline

const QEnqueueNarrativeJob = `--sql 7c1f6f02-9a3d-4c51-8d2e-fd4b7a6e2c11
insert into narrative_jobs (id, prompt, duration_seconds, status, created_at, updated_at)
values ($1, $2, $3, 'QUEUED', now(), now());
`

const QWorkerClaimJob = `--sql 2e8d4b39-51c7-4f0a-9b6d-3a1e8c5f7d20
with next_job as (
    select id
    from narrative_jobs
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update narrative_jobs
    set status = 'RUNNING', updated_at = now()
    where id in (select id from next_job)
    returning id, prompt, duration_seconds
)
select * from updated;
`

const QCompleteJob = `--sql 9f3a7d15-62be-48c4-a50f-8e2d1c4b6a33
update narrative_jobs
set status = 'SUCCEEDED', result_json = $2, updated_at = now()
where id = $1;
`

const QFailJob = `--sql 5b6c2f48-0d9a-4e17-bf32-7c8a1d3e5f44
update narrative_jobs
set status = 'FAILED', error_message = $2, result_json = $3, updated_at = now()
where id = $1;
`

const QSelectJob = `--sql 1d4e8a26-73cf-4b09-a1e5-9b0f2c6d8e55
select id, prompt, duration_seconds, status, coalesce(result_json, '{}'::jsonb), coalesce(error_message, ''), created_at, updated_at
from narrative_jobs
where id = $1;
`
